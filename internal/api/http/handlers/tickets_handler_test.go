package handlers

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/helpdesk-br/chamados-service/internal/auth"
	"github.com/helpdesk-br/chamados-service/internal/config"
	"github.com/helpdesk-br/chamados-service/internal/domain"
	"github.com/helpdesk-br/chamados-service/internal/events"
	"github.com/helpdesk-br/chamados-service/internal/repository"
	"github.com/helpdesk-br/chamados-service/internal/service"
	"github.com/helpdesk-br/chamados-service/internal/storage"
	apperrors "github.com/helpdesk-br/chamados-service/pkg/util"
)

// ---- stubs shared by the handler tests ----

type stubUserRepo struct {
	users map[int64]*domain.User
}

func (r *stubUserRepo) Create(context.Context, *domain.User) error          { return nil }
func (r *stubUserRepo) Update(context.Context, *domain.User) error          { return nil }
func (r *stubUserRepo) UpdateUsername(context.Context, int64, string) error { return nil }
func (r *stubUserRepo) Delete(context.Context, int64) error                 { return nil }
func (r *stubUserRepo) GetByUsername(context.Context, string) (*domain.User, error) {
	return nil, pgx.ErrNoRows
}
func (r *stubUserRepo) GetByCredentialID(context.Context, int64) (*domain.User, error) {
	return nil, pgx.ErrNoRows
}
func (r *stubUserRepo) List(context.Context, int, int) ([]domain.User, error) { return nil, nil }
func (r *stubUserRepo) ListActiveAttendants(context.Context, *int64) ([]domain.User, error) {
	return nil, nil
}

func (r *stubUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

type stubCredentialRepo struct{}

func (stubCredentialRepo) Create(context.Context, *domain.Credential) error          { return nil }
func (stubCredentialRepo) Delete(context.Context, int64) error                       { return nil }
func (stubCredentialRepo) UpdatePassword(context.Context, int64, string, bool) error { return nil }
func (stubCredentialRepo) UpdateUsername(context.Context, int64, string) error       { return nil }
func (stubCredentialRepo) GetByID(context.Context, int64) (*domain.Credential, error) {
	return nil, pgx.ErrNoRows
}
func (stubCredentialRepo) GetByUsername(context.Context, string) (*domain.Credential, error) {
	return nil, pgx.ErrNoRows
}

type stubTicketRepo struct {
	tickets map[int64]*domain.Ticket
}

func (r *stubTicketRepo) Create(context.Context, *domain.Ticket) error { return nil }
func (r *stubTicketRepo) ListWithFilter(context.Context, repository.TicketFilter) ([]domain.Ticket, error) {
	return nil, nil
}
func (r *stubTicketRepo) Claim(context.Context, int64, int64, time.Time) (bool, error) {
	return false, nil
}
func (r *stubTicketRepo) UpdateStatus(context.Context, int64, domain.TicketStatus, *time.Time) error {
	return nil
}
func (r *stubTicketRepo) Delete(context.Context, int64) error { return nil }
func (r *stubTicketRepo) Touch(context.Context, int64) error  { return nil }

func (r *stubTicketRepo) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return ticket, nil
}

type stubAttachmentRepo struct {
	items map[int64]*domain.Attachment
}

func (r *stubAttachmentRepo) Create(context.Context, *domain.Attachment) error { return nil }
func (r *stubAttachmentRepo) ListByTicket(context.Context, int64) ([]domain.Attachment, error) {
	return nil, nil
}

func (r *stubAttachmentRepo) GetByID(_ context.Context, id int64) (*domain.Attachment, error) {
	attachment, ok := r.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return attachment, nil
}

type stubInteractionRepo struct{}

func (stubInteractionRepo) Create(context.Context, *domain.Interaction) error { return nil }
func (stubInteractionRepo) GetByID(context.Context, int64) (*domain.Interaction, error) {
	return nil, pgx.ErrNoRows
}
func (stubInteractionRepo) ListByTicket(context.Context, int64) ([]domain.Interaction, error) {
	return nil, nil
}

type stubDepartmentRepo struct{}

func (stubDepartmentRepo) GetByID(_ context.Context, id int64) (*domain.Department, error) {
	return &domain.Department{ID: id, Name: "TI"}, nil
}
func (stubDepartmentRepo) List(context.Context) ([]domain.Department, error) { return nil, nil }

// authedApp builds a fiber app with the real bearer-token middleware over
// stubbed repositories, plus a token factory for the given users.
func authedApp(t *testing.T, users map[int64]*domain.User) (*fiber.App, fiber.Handler, func(*domain.User) string) {
	t.Helper()
	tm := auth.NewTokenManager("segredo", 60)
	middleware := auth.NewAuthMiddleware(tm, &stubUserRepo{users: users}, stubCredentialRepo{})
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			domainErr := apperrors.ToDomainError(err)
			return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{"code": domainErr.Code})
		},
	})
	token := func(user *domain.User) string {
		raw, _, err := tm.GenerateToken(user.ID, user.Role, false)
		require.NoError(t, err)
		return "Bearer " + raw
	}
	return app, middleware.Handle, token
}

// The blob reader must stay open after the handler returns: fasthttp only
// streams the body afterwards, so closing early truncates every download.
func TestDownloadAttachmentStreamsStoredBytes(t *testing.T) {
	store, err := storage.NewDiskStore(config.StorageConfig{BaseDir: t.TempDir()})
	require.NoError(t, err)
	content := []byte("laudo técnico da impressora do 2º andar")
	key := storage.NewKey(1, "laudo.pdf")
	_, err = store.Save(key, bytes.NewReader(content))
	require.NoError(t, err)

	requester := &domain.User{ID: 10, Role: domain.RoleRequester, Active: true}
	svc := service.NewTicketService(service.TicketDependencies{
		TicketRepo: &stubTicketRepo{tickets: map[int64]*domain.Ticket{
			1: {ID: 1, RequesterID: requester.ID, DestDeptID: 1, Status: domain.StatusOpen},
		}},
		AttachmentRepo: &stubAttachmentRepo{items: map[int64]*domain.Attachment{
			7: {ID: 7, TicketID: 1, FileName: "laudo.pdf", MimeType: "application/pdf",
				StorageKey: key, SizeBytes: int64(len(content))},
		}},
		InteractionRepo: stubInteractionRepo{},
		DepartmentRepo:  stubDepartmentRepo{},
		Blobs:           store,
		Dispatcher:      events.NewInMemoryDispatcher(),
		Logger:          zap.NewNop(),
	})

	app, handle, token := authedApp(t, map[int64]*domain.User{requester.ID: requester})
	handler := NewTicketsHandler(svc)
	app.Get("/tickets/attachments/:id", handle, handler.DownloadAttachment)

	req := httptest.NewRequest("GET", "/tickets/attachments/7", nil)
	req.Header.Set("Authorization", token(requester))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, content, body)
	assert.Equal(t, "application/pdf", resp.Header.Get(fiber.HeaderContentType))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "laudo.pdf")
}

func TestDownloadAttachmentDeniedForStranger(t *testing.T) {
	store, err := storage.NewDiskStore(config.StorageConfig{BaseDir: t.TempDir()})
	require.NoError(t, err)
	key := storage.NewKey(1, "laudo.pdf")
	_, err = store.Save(key, bytes.NewReader([]byte("sigiloso")))
	require.NoError(t, err)

	stranger := &domain.User{ID: 99, Role: domain.RoleRequester, DepartmentID: 5, Active: true}
	svc := service.NewTicketService(service.TicketDependencies{
		TicketRepo: &stubTicketRepo{tickets: map[int64]*domain.Ticket{
			1: {ID: 1, RequesterID: 10, DestDeptID: 1, Status: domain.StatusOpen},
		}},
		AttachmentRepo: &stubAttachmentRepo{items: map[int64]*domain.Attachment{
			7: {ID: 7, TicketID: 1, FileName: "laudo.pdf", StorageKey: key, SizeBytes: 8},
		}},
		InteractionRepo: stubInteractionRepo{},
		DepartmentRepo:  stubDepartmentRepo{},
		Blobs:           store,
		Dispatcher:      events.NewInMemoryDispatcher(),
		Logger:          zap.NewNop(),
	})

	app, handle, token := authedApp(t, map[int64]*domain.User{stranger.ID: stranger})
	handler := NewTicketsHandler(svc)
	app.Get("/tickets/attachments/:id", handle, handler.DownloadAttachment)

	req := httptest.NewRequest("GET", "/tickets/attachments/7", nil)
	req.Header.Set("Authorization", token(stranger))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
