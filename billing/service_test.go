package billing

import (
	"context"
	"errors"
	"testing"

	"github.com/nazsats/blood-report-analyzer-sub000/app/models"
	"github.com/nazsats/blood-report-analyzer-sub000/store"
)

type fakeGateway struct {
	created      []string
	createErr    error
	subscription Subscription
	fetchErr     error
}

func (f *fakeGateway) CreateSubscription(ctx context.Context, planID, uid, planName string) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	f.created = append(f.created, planID)
	return "sub_456", nil
}

func (f *fakeGateway) FetchSubscription(ctx context.Context, subscriptionID string) (Subscription, error) {
	if f.fetchErr != nil {
		return Subscription{}, f.fetchErr
	}
	return f.subscription, nil
}

type fakeStore struct {
	activated map[string]string
	users     map[string]models.User
}

func newFakeStore() *fakeStore {
	return &fakeStore{activated: map[string]string{}, users: map[string]models.User{}}
}

func (f *fakeStore) EnsureUser(ctx context.Context, uid, email string) (models.User, error) {
	return f.users[uid], nil
}

func (f *fakeStore) GetUser(ctx context.Context, uid string) (models.User, error) {
	u, ok := f.users[uid]
	if !ok {
		return models.User{}, store.ErrNotFound
	}
	return u, nil
}

func (f *fakeStore) RecordFreeUpload(ctx context.Context, uid string) error { return nil }

func (f *fakeStore) ActivateSubscription(ctx context.Context, uid string, plan models.Plan, subID string) error {
	f.activated[uid] = subID
	return nil
}

func (f *fakeStore) CreateReport(ctx context.Context, report models.Report) error { return nil }
func (f *fakeStore) FinishReport(ctx context.Context, reportID string, outcome models.Outcome) error {
	return nil
}
func (f *fakeStore) GetReport(ctx context.Context, reportID string) (models.Report, error) {
	return models.Report{}, store.ErrNotFound
}
func (f *fakeStore) GetReportByShareID(ctx context.Context, shareID string) (models.Report, error) {
	return models.Report{}, store.ErrNotFound
}
func (f *fakeStore) ListReports(ctx context.Context, uid string) ([]models.Report, error) {
	return nil, nil
}

func activeSub(uid string) Subscription {
	return Subscription{
		ID:       "sub_456",
		Status:   "active",
		UserID:   uid,
		PlanName: "PRO",
	}
}

func TestActivateHappyPath(t *testing.T) {
	st := newFakeStore()
	svc := NewService(&fakeGateway{subscription: activeSub("user-1")}, st, testSecret)

	sig := sign(t, "pay_123|sub_456")
	if err := svc.Activate(context.Background(), "user-1", "sub_456", "pay_123", sig); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if st.activated["user-1"] != "sub_456" {
		t.Fatalf("user not activated: %+v", st.activated)
	}
}

func TestActivateRejectsBadSignature(t *testing.T) {
	gw := &fakeGateway{subscription: activeSub("user-1")}
	st := newFakeStore()
	svc := NewService(gw, st, testSecret)

	err := svc.Activate(context.Background(), "user-1", "sub_456", "pay_123", "deadbeef")
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("err = %v, want ErrInvalidSignature", err)
	}
	if len(st.activated) != 0 {
		t.Fatalf("user record must not be touched on bad signature")
	}
}

func TestActivateRejectsInactiveSubscription(t *testing.T) {
	sub := activeSub("user-1")
	sub.Status = "created"
	st := newFakeStore()
	svc := NewService(&fakeGateway{subscription: sub}, st, testSecret)

	sig := sign(t, "pay_123|sub_456")
	err := svc.Activate(context.Background(), "user-1", "sub_456", "pay_123", sig)
	if !errors.Is(err, ErrSubscriptionNotActive) {
		t.Fatalf("err = %v, want ErrSubscriptionNotActive", err)
	}
	if len(st.activated) != 0 {
		t.Fatalf("user record must not be touched for inactive subscription")
	}
}

func TestActivateAcceptsAuthenticatedStatus(t *testing.T) {
	sub := activeSub("user-1")
	sub.Status = "authenticated"
	st := newFakeStore()
	svc := NewService(&fakeGateway{subscription: sub}, st, testSecret)

	sig := sign(t, "pay_123|sub_456")
	if err := svc.Activate(context.Background(), "user-1", "sub_456", "pay_123", sig); err != nil {
		t.Fatalf("Activate: %v", err)
	}
}

func TestActivateRejectsUserMismatch(t *testing.T) {
	st := newFakeStore()
	svc := NewService(&fakeGateway{subscription: activeSub("user-B")}, st, testSecret)

	sig := sign(t, "pay_123|sub_456")
	err := svc.Activate(context.Background(), "user-A", "sub_456", "pay_123", sig)
	if !errors.Is(err, ErrUserMismatch) {
		t.Fatalf("err = %v, want ErrUserMismatch", err)
	}
	if len(st.activated) != 0 {
		t.Fatalf("user record must be left unmodified on mismatch")
	}
}

func TestActivateGatewayFailure(t *testing.T) {
	st := newFakeStore()
	svc := NewService(&fakeGateway{fetchErr: errors.New("gateway down")}, st, testSecret)

	sig := sign(t, "pay_123|sub_456")
	if err := svc.Activate(context.Background(), "user-1", "sub_456", "pay_123", sig); err == nil {
		t.Fatalf("expected error")
	}
	if len(st.activated) != 0 {
		t.Fatalf("user record must not be touched on gateway failure")
	}
}

func TestCreatePassesPlanThrough(t *testing.T) {
	gw := &fakeGateway{}
	svc := NewService(gw, newFakeStore(), testSecret)

	subID, err := svc.Create(context.Background(), "user-1", "plan_basic", "Basic")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if subID != "sub_456" {
		t.Fatalf("subID = %q", subID)
	}
	if len(gw.created) != 1 || gw.created[0] != "plan_basic" {
		t.Fatalf("gateway not called with plan: %+v", gw.created)
	}
}

func TestIsActive(t *testing.T) {
	st := newFakeStore()
	st.users["pro"] = models.User{Uid: "pro", Pro: true}
	st.users["free"] = models.User{Uid: "free"}
	svc := NewService(&fakeGateway{}, st, testSecret)

	if active, err := svc.IsActive(context.Background(), "pro"); err != nil || !active {
		t.Fatalf("pro user: active=%v err=%v", active, err)
	}
	if active, err := svc.IsActive(context.Background(), "free"); err != nil || active {
		t.Fatalf("free user: active=%v err=%v", active, err)
	}
	if active, err := svc.IsActive(context.Background(), "missing"); err != nil || active {
		t.Fatalf("missing user must be inactive without error: active=%v err=%v", active, err)
	}
}
