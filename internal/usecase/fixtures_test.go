package usecase

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"marketplace/internal/data/entity"
	"marketplace/internal/data/repository"
	"marketplace/internal/data/repository/memory"
	"marketplace/internal/dto/request"
	"marketplace/internal/event"
	"marketplace/pkg/utils"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

type fakeImages struct {
	mu      sync.Mutex
	saved   []string
	deleted []string
}

func (f *fakeImages) Save(_ context.Context, filename, _ string, r io.Reader) (string, error) {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	ref := "/uploads/" + filename
	f.saved = append(f.saved, ref)
	return ref, nil
}

func (f *fakeImages) Delete(_ context.Context, ref string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, ref)
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []event.ProductEvent
}

func (p *recordingPublisher) Publish(_ context.Context, evt event.ProductEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func testConfig() *utils.Config {
	return &utils.Config{
		JWT: utils.JWTConfig{
			Secret:          "test-secret",
			AccessTTLMin:    15,
			RefreshTTLHours: 24,
		},
		Security: utils.SecurityConfig{BcryptCost: bcrypt.MinCost},
		Policy:   utils.PolicyConfig{ResetStatusOnEdit: true},
		Upload:   utils.UploadConfig{Driver: utils.UploadLocal, MaxBytes: 1 << 20},
	}
}

type fixture struct {
	svc    *Service
	repo   *repository.Repository
	images *fakeImages
	events *recordingPublisher
	config *utils.Config
}

func newFixture(t *testing.T, mutate ...func(*utils.Config)) *fixture {
	t.Helper()

	config := testConfig()
	for _, m := range mutate {
		m(config)
	}

	f := &fixture{
		repo:   memory.NewRepository(),
		images: &fakeImages{},
		events: &recordingPublisher{},
		config: config,
	}
	f.svc = NewService(f.repo, Dependencies{Images: f.images, Events: f.events}, config, zaptest.NewLogger(t))
	return f
}

// seedUser stores a user directly, bypassing registration.
func (f *fixture) seedUser(t *testing.T, username string, role entity.UserRole) *entity.User {
	t.Helper()

	hash, err := utils.HashPassword("secret123", bcrypt.MinCost)
	require.NoError(t, err)

	user := &entity.User{
		Base:         entity.NewBase(time.Now()),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
		Phone:        "+62811000" + username,
		Role:         role,
	}
	require.NoError(t, f.repo.User.Create(context.Background(), user))
	return user
}

func identityOf(u *entity.User) entity.Identity {
	return entity.Identity{UserID: u.ID, Role: u.Role}
}

func pngUpload(name string) *request.ImageUpload {
	return &request.ImageUpload{
		Filename: name,
		Size:     int64(len(pngBytes)),
		File:     bytes.NewReader(pngBytes),
	}
}

// createProduct submits a product as seller and returns its id.
func (f *fixture) createProduct(t *testing.T, seller *entity.User, name string) string {
	t.Helper()

	resp, err := f.svc.Product.Create(context.Background(), identityOf(seller),
		&request.CreateProductRequest{Name: name, Price: 50, Description: name + " for sale"},
		pngUpload(name+".png"))
	require.NoError(t, err)
	return resp.ID
}
