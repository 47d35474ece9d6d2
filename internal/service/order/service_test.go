package order

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"testing"
	"time"

	"cartify/internal/domain"
	"cartify/internal/messaging"
	orderrepo "cartify/internal/repository/order"
	"github.com/shopspring/decimal"
)

const (
	orderID   = "11111111-2222-4333-8444-555555555555"
	productID = "aaaaaaaa-bbbb-4ccc-8ddd-eeeeeeeeeeee"
)

type stubRepo struct {
	checkoutIn  orderrepo.CheckoutInput
	checkoutErr error
	order       *domain.Order
}

func (s *stubRepo) Checkout(_ context.Context, in orderrepo.CheckoutInput) (string, error) {
	s.checkoutIn = in
	if s.checkoutErr != nil {
		return "", s.checkoutErr
	}
	return orderID, nil
}

func (s *stubRepo) ListByUser(context.Context, string) ([]domain.Order, error) {
	return []domain.Order{*s.order}, nil
}

func (s *stubRepo) GetForUser(_ context.Context, userID, id string) (*domain.Order, error) {
	if s.order == nil || s.order.UserID != userID || s.order.ID != id {
		return nil, domain.ErrNotFound
	}
	return s.order, nil
}

func (s *stubRepo) ListAll(context.Context) ([]domain.Order, error) {
	return nil, nil
}

type stubPublisher struct {
	topic  string
	key    string
	event  any
	err    error
	called int
}

func (p *stubPublisher) Publish(_ context.Context, topic, key string, event any) error {
	p.called++
	p.topic, p.key, p.event = topic, key, event
	return p.err
}

func (p *stubPublisher) Close() error { return nil }

func validShipping() domain.ShippingAddress {
	return domain.ShippingAddress{
		Email:     "buyer@example.com",
		FirstName: "Asha",
		LastName:  "Rao",
		Address:   "12 MG Road",
		City:      "Pune",
		State:     "MH",
		ZipCode:   "411001",
		Country:   "IN",
	}
}

func storedOrder() *domain.Order {
	pid := productID
	return &domain.Order{
		ID:         orderID,
		UserID:     "u1",
		Status:     domain.OrderStatusPending,
		TotalCents: 2998,
		Currency:   "INR",
		CreatedAt:  time.Now(),
		Items: []domain.OrderItem{
			{ProductID: &pid, ProductName: "Mug", Quantity: 2, UnitPriceCents: 1499},
		},
	}
}

func TestCreateValidatesShipping(t *testing.T) {
	svc := New(&stubRepo{}, nil, nil, "", nil)
	user := domain.User{ID: "u1", Email: "u1@example.com"}

	missing := validShipping()
	missing.City = "  "
	_, err := svc.Create(context.Background(), user, CreateInput{Shipping: missing})
	var de *domain.Error
	if !errors.As(err, &de) || de.Message != "shipping city is required" {
		t.Fatalf("expected city error, got %v", err)
	}

	badEmail := validShipping()
	badEmail.Email = "nope"
	_, err = svc.Create(context.Background(), user, CreateInput{Shipping: badEmail})
	if !errors.As(err, &de) || de.Message != "invalid email format" {
		t.Fatalf("expected email error, got %v", err)
	}
}

func TestCreateValidatesItems(t *testing.T) {
	repo := &stubRepo{}
	svc := New(repo, nil, nil, "", nil)
	user := domain.User{ID: "u1"}

	_, err := svc.Create(context.Background(), user, CreateInput{
		Shipping: validShipping(),
		Items:    []domain.LineRequest{{ProductID: productID, Quantity: 0}},
	})
	if domain.KindOf(err) != domain.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if repo.checkoutIn.UserID != "" {
		t.Fatalf("checkout must not run on invalid input")
	}
}

func TestCreateRejectsOversizedQuantity(t *testing.T) {
	repo := &stubRepo{}
	svc := New(repo, nil, nil, "", nil)

	_, err := svc.Create(context.Background(), domain.User{ID: "u1"}, CreateInput{
		Shipping: validShipping(),
		Items:    []domain.LineRequest{{ProductID: productID, Quantity: domain.MaxQuantity + 1}},
	})
	var de *domain.Error
	if !errors.As(err, &de) || de.Message != "invalid quantity" {
		t.Fatalf("expected invalid quantity, got %v", err)
	}
	if repo.checkoutIn.UserID != "" {
		t.Fatalf("checkout must not run on invalid input")
	}
}

func TestCreateCanonicalisesProductIDs(t *testing.T) {
	repo := &stubRepo{order: storedOrder()}
	svc := New(repo, nil, nil, "INR", nil)

	_, err := svc.Create(context.Background(), domain.User{ID: "u1"}, CreateInput{
		Shipping: validShipping(),
		Items:    []domain.LineRequest{{ProductID: strings.ToUpper(productID), Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got := repo.checkoutIn.Items[0].ProductID; got != productID {
		t.Fatalf("expected canonical id %s, got %s", productID, got)
	}
}

func TestCreatePassesLinesWithoutPrices(t *testing.T) {
	repo := &stubRepo{order: storedOrder()}
	pub := &stubPublisher{}
	svc := New(repo, pub, nil, "INR", nil)

	order, err := svc.Create(context.Background(), domain.User{ID: "u1", Email: "u1@example.com"}, CreateInput{
		Shipping: validShipping(),
		Items:    []domain.LineRequest{{ProductID: productID, Quantity: 2, Color: " blue "}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if order.ID != orderID {
		t.Fatalf("unexpected order %+v", order)
	}
	in := repo.checkoutIn
	if in.UserEmail != "u1@example.com" || in.Currency != "INR" || len(in.Items) != 1 || in.Items[0].Color != "blue" {
		t.Fatalf("unexpected checkout input %+v", in)
	}
	if pub.topic != messaging.TopicOrderCreated || pub.key != orderID {
		t.Fatalf("unexpected publish %s %s", pub.topic, pub.key)
	}
	ev, ok := pub.event.(messaging.OrderCreatedEvent)
	if !ok || ev.TotalCents != 2998 || len(ev.Items) != 1 || ev.Items[0].ProductID != productID {
		t.Fatalf("unexpected event %+v", pub.event)
	}
}

func TestCreateLogsClientTotalMismatch(t *testing.T) {
	var buf bytes.Buffer
	repo := &stubRepo{order: storedOrder()}
	svc := New(repo, nil, nil, "", log.New(&buf, "", 0))

	wrong := decimal.RequireFromString("0.01")
	order, err := svc.Create(context.Background(), domain.User{ID: "u1"}, CreateInput{Shipping: validShipping(), Total: &wrong})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if order.TotalCents != 2998 {
		t.Fatalf("stored total must win, got %d", order.TotalCents)
	}
	if !strings.Contains(buf.String(), "client total mismatch") {
		t.Fatalf("expected mismatch logged, got %q", buf.String())
	}
}

func TestCreatePublishFailureKeepsOrder(t *testing.T) {
	repo := &stubRepo{order: storedOrder()}
	svc := New(repo, &stubPublisher{err: errors.New("broker down")}, nil, "", nil)
	if _, err := svc.Create(context.Background(), domain.User{ID: "u1"}, CreateInput{Shipping: validShipping()}); err != nil {
		t.Fatalf("publish failures must not fail checkout: %v", err)
	}
}

func TestCreateSurfacesProcedureError(t *testing.T) {
	repo := &stubRepo{checkoutErr: domain.Validation("cart is empty")}
	svc := New(repo, nil, nil, "", nil)
	_, err := svc.Create(context.Background(), domain.User{ID: "u1"}, CreateInput{Shipping: validShipping()})
	var de *domain.Error
	if !errors.As(err, &de) || de.Message != "cart is empty" {
		t.Fatalf("expected cart is empty, got %v", err)
	}
}

func TestGetForUserScopesToCaller(t *testing.T) {
	svc := New(&stubRepo{order: storedOrder()}, nil, nil, "", nil)
	if _, err := svc.GetForUser(context.Background(), "u2", orderID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found for other user, got %v", err)
	}
	if _, err := svc.GetForUser(context.Background(), "u1", "bad-id"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found for malformed id, got %v", err)
	}
}
