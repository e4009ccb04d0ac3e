package services

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"ridehub/internal/models"
	"ridehub/internal/utils"
)

type otpFixture struct {
	users   *fakeUserRepo
	cache   *fakeCache
	sms     *fakeSMS
	service OTPService
}

func newOTPFixture() *otpFixture {
	users := newFakeUserRepo()
	cache := newFakeCache()
	smsProvider := &fakeSMS{}
	return &otpFixture{
		users:   users,
		cache:   cache,
		sms:     smsProvider,
		service: NewOTPService(users, cache, smsProvider, testLogger()),
	}
}

func TestOTPSendAndVerify(t *testing.T) {
	fx := newOTPFixture()
	user := fx.users.put(activeUser(models.RoleRider))

	if err := fx.service.Send(context.Background(), actorFor(user)); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	fx.sms.mu.Lock()
	if len(fx.sms.sent) != 1 {
		fx.sms.mu.Unlock()
		t.Fatalf("sms sent = %d, want 1", len(fx.sms.sent))
	}
	sent := fx.sms.sent[0]
	fx.sms.mu.Unlock()

	if sent.To != user.Phone {
		t.Errorf("sms to = %s, want %s", sent.To, user.Phone)
	}

	var code string
	if err := fx.cache.Get(context.Background(), OTPCacheKey(user.Phone), &code); err != nil {
		t.Fatalf("code not stored: %v", err)
	}
	if len(code) != utils.OTPLength {
		t.Errorf("code length = %d, want %d", len(code), utils.OTPLength)
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			t.Errorf("code %q contains non-digit", code)
			break
		}
	}
	if !strings.Contains(sent.Message, code) {
		t.Error("sms message does not carry the code")
	}

	if err := fx.service.Verify(context.Background(), code, actorFor(user)); err != nil {
		t.Fatalf("Verify() error = %v", err)
	}

	reloaded, _ := fx.users.GetByID(context.Background(), user.ID)
	if !reloaded.IsVerified {
		t.Error("user not marked verified")
	}

	// Single use.
	if err := fx.service.Verify(context.Background(), code, actorFor(user)); !utils.IsCode(err, http.StatusBadRequest) {
		t.Errorf("second Verify() = %v, want BAD_REQUEST", err)
	}
}

func TestOTPVerifyRejectsWrongCode(t *testing.T) {
	fx := newOTPFixture()
	user := fx.users.put(activeUser(models.RoleRider))

	if err := fx.service.Send(context.Background(), actorFor(user)); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if err := fx.service.Verify(context.Background(), "000000", actorFor(user)); !utils.IsCode(err, http.StatusBadRequest) {
		t.Errorf("wrong code = %v, want BAD_REQUEST", err)
	}

	reloaded, _ := fx.users.GetByID(context.Background(), user.ID)
	if reloaded.IsVerified {
		t.Error("wrong code verified the user")
	}
}

func TestOTPSendGuards(t *testing.T) {
	t.Run("already verified", func(t *testing.T) {
		fx := newOTPFixture()
		user := activeUser(models.RoleRider)
		user.IsVerified = true
		fx.users.put(user)

		if err := fx.service.Send(context.Background(), actorFor(user)); !utils.IsCode(err, http.StatusBadRequest) {
			t.Errorf("Send() to verified user = %v, want BAD_REQUEST", err)
		}
	})

	t.Run("no phone on record", func(t *testing.T) {
		fx := newOTPFixture()
		user := activeUser(models.RoleRider)
		user.Phone = ""
		fx.users.put(user)

		if err := fx.service.Send(context.Background(), actorFor(user)); !utils.IsCode(err, http.StatusBadRequest) {
			t.Errorf("Send() without phone = %v, want BAD_REQUEST", err)
		}
	})

	t.Run("delivery failure surfaces", func(t *testing.T) {
		fx := newOTPFixture()
		fx.sms.fail = true
		user := fx.users.put(activeUser(models.RoleRider))

		if err := fx.service.Send(context.Background(), actorFor(user)); !utils.IsCode(err, http.StatusBadRequest) {
			t.Errorf("Send() with failing provider = %v, want BAD_REQUEST", err)
		}
	})
}
