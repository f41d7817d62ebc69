package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/productivity/pkg/apperr"
	"github.com/artem13815/productivity/pkg/auth"
	"github.com/artem13815/productivity/pkg/repository/memory"
)

type staticTokens struct{ err error }

func (s staticTokens) Generate(_ context.Context, u auth.User) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "token-for-" + u.Email, nil
}

type recordingPhotos struct {
	saved   []string
	deleted []string
	err     error
}

func (r *recordingPhotos) Save(_ context.Context, filename, _ string, _ []byte) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	r.saved = append(r.saved, filename)
	return "/uploads/" + filename, nil
}

func (r *recordingPhotos) Delete(_ context.Context, url string) error {
	r.deleted = append(r.deleted, url)
	return nil
}

// lateDuplicate passes the existence check but loses on insert, like a
// concurrent registration hitting the unique index.
type lateDuplicate struct {
	*memory.UserRepository
}

func (lateDuplicate) Create(context.Context, auth.User) error {
	return auth.ErrUserAlreadyExists
}

func TestRegister_StoresHashAndReturnsProfile(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewUserRepository()
	photos := &recordingPhotos{}
	svc := auth.NewAuthService(repo, staticTokens{}, photos)

	res, err := svc.Register(ctx, auth.RegisterInput{
		Email:    " A@X.com",
		Password: "s3cret-pass",
		Name:     "Alice",
		Photo:    &auth.Photo{Filename: "me.png", ContentType: "image/png", Data: []byte{1}},
	})
	require.NoError(t, err)

	assert.Equal(t, "a@x.com", res.User.Email)
	assert.Equal(t, "token-for-a@x.com", res.Token)
	assert.Equal(t, auth.Profile{Email: "a@x.com", Name: "Alice", PhotoURL: "/uploads/me.png"}, res.User.Profile())
	assert.Equal(t, []string{"me.png"}, photos.saved)

	stored, err := repo.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", stored.PasswordHash)
	assert.NotEmpty(t, stored.PasswordHash)
}

func TestRegister_Twice_Conflict(t *testing.T) {
	ctx := context.Background()
	svc := auth.NewAuthService(memory.NewUserRepository(), staticTokens{}, nil)

	in := auth.RegisterInput{Email: "a@x.com", Password: "pw", Name: "A"}
	_, err := svc.Register(ctx, in)
	require.NoError(t, err)

	_, err = svc.Register(ctx, in)
	require.Error(t, err)
	assert.True(t, errors.Is(err, auth.ErrUserAlreadyExists))
	assert.Equal(t, "User already exists", err.Error())
}

func TestRegister_Validation(t *testing.T) {
	svc := auth.NewAuthService(memory.NewUserRepository(), staticTokens{}, nil)

	_, err := svc.Register(context.Background(), auth.RegisterInput{Email: "nope", Password: "", Name: ""})
	require.Error(t, err)
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindValidation, e.Kind)
	assert.Contains(t, e.Fields, "email")
	assert.Contains(t, e.Fields, "password")
	assert.Contains(t, e.Fields, "name")
}

func TestRegister_PhotoFailureCreatesNoUser(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewUserRepository()
	svc := auth.NewAuthService(repo, staticTokens{}, &recordingPhotos{err: apperr.Validation("unsupported photo format")})

	_, err := svc.Register(ctx, auth.RegisterInput{
		Email: "a@x.com", Password: "pw", Name: "A",
		Photo: &auth.Photo{Filename: "me.exe"},
	})
	require.Error(t, err)

	_, err = repo.GetByEmail(ctx, "a@x.com")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestRegister_LostInsertRaceRemovesPhoto(t *testing.T) {
	photos := &recordingPhotos{}
	svc := auth.NewAuthService(lateDuplicate{memory.NewUserRepository()}, staticTokens{}, photos)

	_, err := svc.Register(context.Background(), auth.RegisterInput{
		Email: "a@x.com", Password: "pw", Name: "A",
		Photo: &auth.Photo{Filename: "me.png", ContentType: "image/png", Data: []byte{1}},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, auth.ErrUserAlreadyExists))
	assert.Equal(t, []string{"me.png"}, photos.saved)
	assert.Equal(t, []string{"/uploads/me.png"}, photos.deleted)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	svc := auth.NewAuthService(memory.NewUserRepository(), staticTokens{}, nil)
	_, err := svc.Register(ctx, auth.RegisterInput{Email: "a@x.com", Password: "right", Name: "A"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, "a@x.com", "wrong")
	assert.True(t, errors.Is(err, auth.ErrInvalidCredentials))
	assert.Equal(t, "Invalid credentials", err.Error())

	_, err = svc.Login(ctx, "ghost@x.com", "right")
	assert.True(t, errors.Is(err, auth.ErrInvalidCredentials))

	res, err := svc.Login(ctx, "A@x.com ", "right")
	require.NoError(t, err)
	assert.Equal(t, "A", res.User.Name)
	assert.Equal(t, "token-for-a@x.com", res.Token)

	_, err = svc.Login(ctx, "", "")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestLogin_TokenFailureIsInternal(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewUserRepository()
	_, err := auth.NewAuthService(repo, staticTokens{}, nil).
		Register(ctx, auth.RegisterInput{Email: "a@x.com", Password: "pw", Name: "A"})
	require.NoError(t, err)

	svc := auth.NewAuthService(repo, staticTokens{err: errors.New("signing key missing")}, nil)
	_, err = svc.Login(ctx, "a@x.com", "pw")
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
}
