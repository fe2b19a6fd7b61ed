package user

import (
	"github.com/makemyfuture/planner/core"
)

type serviceMock struct {
	service
}

// NewServiceMock returns a service whose mail side effects run synchronously,
// for deterministic tests.
func NewServiceMock(conf *core.Config, repo Repository, mailSvc core.EmailService) ServiceInterface {
	initTokenGenerator(conf)
	return &serviceMock{
		service: service{
			repo:    repo,
			mailSvc: mailSvc,
			conf:    conf,
		},
	}
}

func (svc *serviceMock) RequestPasswordReset(email string) error {
	usr, err := svc.GetByEmail(email)
	if err != nil {
		return err
	}
	// run synchronously
	svc.sendPasswordResetMail(usr)
	return nil
}
