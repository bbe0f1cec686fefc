package service

import (
	"context"
	"errors"
	"testing"

	"github.com/epsilon-academy/academy-backend/internal/model"
	"github.com/epsilon-academy/academy-backend/internal/repository/memory"
)

func TestSignupDefaultsToStudent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sess, err := f.auth.Signup(ctx, model.SignupRequest{
		Email: "Nuevo@Epsilon.Academy", Password: "secreto1", FullName: "Nuevo Alumno",
	}, false)
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if sess.Profile.Role != model.RoleStudent {
		t.Errorf("role = %s, want student", sess.Profile.Role)
	}
	if sess.Profile.Email != "nuevo@epsilon.academy" {
		t.Errorf("email not normalized: %s", sess.Profile.Email)
	}

	claims, err := f.auth.ValidateToken(ctx, sess.Token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != sess.Profile.ID || claims.Role != model.RoleStudent {
		t.Errorf("claims = %+v", claims)
	}
}

func TestSignupPrivilegedRoleNeedsServiceRole(t *testing.T) {
	f := newFixture(t)
	req := model.SignupRequest{Email: "prof@x.pe", Password: "secreto1", FullName: "Profe", Role: model.RoleTeacher}

	if _, err := f.auth.Signup(context.Background(), req, false); !errors.Is(err, ErrServiceRoleRequired) {
		t.Fatalf("expected ErrServiceRoleRequired, got %v", err)
	}
	sess, err := f.auth.Signup(context.Background(), req, true)
	if err != nil {
		t.Fatalf("privileged signup: %v", err)
	}
	if sess.Profile.Role != model.RoleTeacher {
		t.Fatalf("role = %s", sess.Profile.Role)
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	_, err := f.auth.Signup(context.Background(), model.SignupRequest{
		Email: "ana@epsilon.academy", Password: "secreto1", FullName: "Ana Bis",
	}, false)
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.auth.Login(ctx, model.LoginRequest{Email: "ana@epsilon.academy", Password: "incorrecta"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: %v", err)
	}
	if _, err := f.auth.Login(ctx, model.LoginRequest{Email: "nadie@epsilon.academy", Password: "x"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email: %v", err)
	}
	sess, err := f.auth.Login(ctx, model.LoginRequest{Email: "ana@epsilon.academy", Password: memory.FixturePassword})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if sess.Profile.ID != memory.FixtureStudentID {
		t.Fatalf("logged in as %s", sess.Profile.ID)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sess, err := f.auth.Login(ctx, model.LoginRequest{Email: "docente@epsilon.academy", Password: memory.FixturePassword})
	if err != nil {
		t.Fatal(err)
	}
	claims, err := f.auth.ValidateToken(ctx, sess.Token)
	if err != nil {
		t.Fatal(err)
	}
	if err := f.auth.Logout(ctx, claims.Identity()); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := f.auth.ValidateToken(ctx, sess.Token); !errors.Is(err, ErrTokenRevoked) {
		t.Fatalf("expected ErrTokenRevoked, got %v", err)
	}
}

func TestValidateTokenRejectsForeignSignature(t *testing.T) {
	f := newFixture(t)
	p := &model.Profile{ID: memory.FixtureAdminID, Role: model.RoleAdmin}
	token, _, err := f.auth.GenerateToken(p)
	if err != nil {
		t.Fatal(err)
	}
	f.cfg.JWTSecret = "rotated"
	if _, err := f.auth.ValidateToken(context.Background(), token); err == nil {
		t.Fatal("token signed with old secret accepted")
	}
}

func TestUpdatePasswordByEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.auth.UpdatePassword(ctx, model.UpdatePasswordRequest{Email: "luis@epsilon.academy", NewPassword: "nuevaclave"})
	if err != nil {
		t.Fatalf("UpdatePassword: %v", err)
	}
	if _, err := f.auth.Login(ctx, model.LoginRequest{Email: "luis@epsilon.academy", Password: "nuevaclave"}); err != nil {
		t.Fatalf("login with new password: %v", err)
	}

	missing := memory.FixtureCourseID
	err = f.auth.UpdatePassword(ctx, model.UpdatePasswordRequest{UserID: &missing, NewPassword: "nuevaclave"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCredentialChangesRevokeOutstandingTokens(t *testing.T) {
	tests := []struct {
		name   string
		email  string
		change func(f *fixture, ctx context.Context) error
	}{
		{
			name:  "password update",
			email: "luis@epsilon.academy",
			change: func(f *fixture, ctx context.Context) error {
				return f.auth.UpdatePassword(ctx, model.UpdatePasswordRequest{Email: "luis@epsilon.academy", NewPassword: memory.FixturePassword})
			},
		},
		{
			name:  "role change",
			email: "docente@epsilon.academy",
			change: func(f *fixture, ctx context.Context) error {
				_, err := f.users.Update(ctx, memory.FixtureTeacherID, model.UpdateProfileRequest{Role: model.RoleStudent})
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()

			old, err := f.auth.Login(ctx, model.LoginRequest{Email: tt.email, Password: memory.FixturePassword})
			if err != nil {
				t.Fatal(err)
			}
			if err := tt.change(f, ctx); err != nil {
				t.Fatalf("change: %v", err)
			}
			if _, err := f.auth.ValidateToken(ctx, old.Token); !errors.Is(err, ErrTokenRevoked) {
				t.Fatalf("old token: expected ErrTokenRevoked, got %v", err)
			}

			fresh, err := f.auth.Login(ctx, model.LoginRequest{Email: tt.email, Password: memory.FixturePassword})
			if err != nil {
				t.Fatal(err)
			}
			claims, err := f.auth.ValidateToken(ctx, fresh.Token)
			if err != nil {
				t.Fatalf("fresh token rejected: %v", err)
			}
			if claims.Role != fresh.Profile.Role {
				t.Fatalf("fresh token role = %s, profile role = %s", claims.Role, fresh.Profile.Role)
			}
		})
	}
}

func TestNameOnlyUpdateKeepsTokens(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sess, err := f.auth.Login(ctx, model.LoginRequest{Email: "docente@epsilon.academy", Password: memory.FixturePassword})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.users.Update(ctx, memory.FixtureTeacherID, model.UpdateProfileRequest{FullName: "Docente Renombrado", Role: model.RoleTeacher}); err != nil {
		t.Fatal(err)
	}
	if _, err := f.auth.ValidateToken(ctx, sess.Token); err != nil {
		t.Fatalf("token revoked without a role change: %v", err)
	}
}
