package cart

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/davemorenodev/loungelab-backend/pkg/db/models"
	"github.com/davemorenodev/loungelab-backend/pkg/enums"
	"github.com/davemorenodev/loungelab-backend/pkg/logger"
)

type stubGuestStore struct {
	calls []string
	lines []Line
}

func (s *stubGuestStore) List(ctx context.Context, token string) []Line {
	s.calls = append(s.calls, "list")
	return s.lines
}

func (s *stubGuestStore) Add(ctx context.Context, token string, input LineInput) ([]Line, error) {
	s.calls = append(s.calls, "add")
	s.lines = append(s.lines, Line{
		LineID:      NewLineID(),
		ProductName: input.ProductName,
		UnitPrice:   input.UnitPrice,
		Quantity:    input.Quantity,
		Size:        input.Size,
	})
	return s.lines, nil
}

func (s *stubGuestStore) UpdateQuantity(ctx context.Context, token, lineID string, quantity int) []Line {
	s.calls = append(s.calls, "update")
	return s.lines
}

func (s *stubGuestStore) Remove(ctx context.Context, token, lineID string) []Line {
	s.calls = append(s.calls, "remove")
	return s.lines
}

func (s *stubGuestStore) Clear(ctx context.Context, token string) {
	s.calls = append(s.calls, "clear")
	s.lines = nil
}

type stubAccountRepo struct {
	calls    []string
	items    []models.CartItem
	existing *models.CartItem

	updatedRowID uuid.UUID
	updatedQty   int
	inserted     []CreateItemDTO
}

func (r *stubAccountRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	r.calls = append(r.calls, "list")
	return r.items, nil
}

func (r *stubAccountRepo) Insert(ctx context.Context, dto CreateItemDTO) (*models.CartItem, error) {
	r.calls = append(r.calls, "insert")
	r.inserted = append(r.inserted, dto)
	item := models.CartItem{
		ID:          uuid.New(),
		UserID:      dto.UserID,
		ProductName: dto.ProductName,
		UnitPrice:   dto.UnitPrice,
		Quantity:    dto.Quantity,
		Size:        dto.Size,
	}
	r.items = append(r.items, item)
	return &item, nil
}

func (r *stubAccountRepo) FindByUserProductSize(ctx context.Context, userID uuid.UUID, productName string, size enums.Size) (*models.CartItem, error) {
	r.calls = append(r.calls, "find")
	return r.existing, nil
}

func (r *stubAccountRepo) UpdateQuantity(ctx context.Context, userID, rowID uuid.UUID, quantity int) error {
	r.calls = append(r.calls, "update")
	r.updatedRowID = rowID
	r.updatedQty = quantity
	return nil
}

func (r *stubAccountRepo) Remove(ctx context.Context, userID, rowID uuid.UUID) error {
	r.calls = append(r.calls, "remove")
	return nil
}

func (r *stubAccountRepo) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	r.calls = append(r.calls, "delete")
	return nil
}

func newTestService(t *testing.T, guest *stubGuestStore, repo *stubAccountRepo) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(guest, repo, logg)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestServiceGuestSubjectNeverTouchesRepository(t *testing.T) {
	ctx := context.Background()
	guest := &stubGuestStore{}
	repo := &stubAccountRepo{}
	svc := newTestService(t, guest, repo)
	subject := Subject{CartToken: "tok"}

	if _, err := svc.Add(ctx, subject, sweatpants(enums.SizeM, 1)); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := svc.List(ctx, subject); err != nil {
		t.Fatalf("List: %v", err)
	}
	if _, err := svc.UpdateQuantity(ctx, subject, guest.lines[0].LineID, 2); err != nil {
		t.Fatalf("UpdateQuantity: %v", err)
	}
	if _, err := svc.Remove(ctx, subject, guest.lines[0].LineID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := svc.Clear(ctx, subject); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	if len(repo.calls) != 0 {
		t.Fatalf("guest operations must not reach the account repository, saw %v", repo.calls)
	}
	if len(guest.calls) != 5 {
		t.Fatalf("expected 5 guest store calls, saw %v", guest.calls)
	}
}

func TestServiceAccountSubjectNeverTouchesGuestStore(t *testing.T) {
	ctx := context.Background()
	guest := &stubGuestStore{}
	repo := &stubAccountRepo{}
	svc := newTestService(t, guest, repo)
	userID := uuid.New()
	subject := Subject{UserID: &userID}

	lines, err := svc.Add(ctx, subject, sweatpants(enums.SizeM, 1))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %d", len(lines))
	}
	if _, err := svc.List(ctx, subject); err != nil {
		t.Fatalf("List: %v", err)
	}
	if _, err := svc.UpdateQuantity(ctx, subject, repo.items[0].ID.String(), 2); err != nil {
		t.Fatalf("UpdateQuantity: %v", err)
	}
	if _, err := svc.Remove(ctx, subject, repo.items[0].ID.String()); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := svc.Clear(ctx, subject); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	if len(guest.calls) != 0 {
		t.Fatalf("account operations must not reach the guest store, saw %v", guest.calls)
	}
}

func TestServiceAccountAddBumpsExistingLine(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	existing := &models.CartItem{
		ID:          uuid.New(),
		UserID:      userID,
		ProductName: "Cloud Sweatpants",
		UnitPrice:   decimal.NewFromInt(78),
		Quantity:    2,
		Size:        enums.SizeM,
	}
	repo := &stubAccountRepo{existing: existing, items: []models.CartItem{*existing}}
	svc := newTestService(t, &stubGuestStore{}, repo)
	subject := Subject{UserID: &userID}

	if _, err := svc.Add(ctx, subject, sweatpants(enums.SizeM, 3)); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if len(repo.inserted) != 0 {
		t.Fatal("matching line must be bumped, not re-inserted")
	}
	if repo.updatedRowID != existing.ID {
		t.Fatalf("expected update on row %s, got %s", existing.ID, repo.updatedRowID)
	}
	if repo.updatedQty != 5 {
		t.Fatalf("expected merged quantity 5, got %d", repo.updatedQty)
	}
}

func TestServiceAccountValidation(t *testing.T) {
	ctx := context.Background()
	repo := &stubAccountRepo{}
	svc := newTestService(t, &stubGuestStore{}, repo)
	userID := uuid.New()
	subject := Subject{UserID: &userID}

	if _, err := svc.Add(ctx, subject, sweatpants(enums.SizeM, 0)); err == nil {
		t.Fatal("expected error for quantity below 1")
	}
	if _, err := svc.UpdateQuantity(ctx, subject, "not-a-uuid", 2); err == nil {
		t.Fatal("expected error for malformed line id")
	}
	if _, err := svc.Remove(ctx, subject, "not-a-uuid"); err == nil {
		t.Fatal("expected error for malformed line id")
	}
}

func TestServiceAccountUpdateQuantityBelowOneIsNoop(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	item := models.CartItem{ID: uuid.New(), UserID: userID, ProductName: "Cloud Sweatpants", Quantity: 2, Size: enums.SizeM}
	repo := &stubAccountRepo{items: []models.CartItem{item}}
	svc := newTestService(t, &stubGuestStore{}, repo)
	subject := Subject{UserID: &userID}

	lines, err := svc.UpdateQuantity(ctx, subject, item.ID.String(), 0)
	if err != nil {
		t.Fatalf("UpdateQuantity: %v", err)
	}
	if lines[0].Quantity != 2 {
		t.Fatalf("quantity below 1 must be ignored, got %d", lines[0].Quantity)
	}
	for _, call := range repo.calls {
		if call == "update" {
			t.Fatal("no repository update expected for quantity below 1")
		}
	}
}
