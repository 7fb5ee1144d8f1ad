package usecase

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"careernest/internal/database"
	"careernest/internal/domain/application"
	"careernest/internal/domain/schedule"
	"careernest/internal/domain/user"
	"careernest/internal/repository"

	"github.com/google/uuid"
)

type fakeTx struct {
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Exec(context.Context, string, ...any) (int64, error) { return 0, nil }

func (t *fakeTx) Query(context.Context, string, ...any) (database.Rows, error) { return nil, nil }

func (t *fakeTx) QueryRow(context.Context, string, ...any) database.Row { return nil }

func (t *fakeTx) Commit(ctx context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	t.rolledBack = true
	return nil
}

type fakeDB struct {
	tx         *fakeTx
	beginErr   error
	beginCalls int
}

func (d *fakeDB) Ping(context.Context) error { return nil }

func (d *fakeDB) Close() error { return nil }

func (d *fakeDB) Exec(context.Context, string, ...any) (int64, error) { return 0, nil }

func (d *fakeDB) Query(context.Context, string, ...any) (database.Rows, error) { return nil, nil }

func (d *fakeDB) QueryRow(context.Context, string, ...any) database.Row { return nil }

func (d *fakeDB) SQLDB() *sql.DB { return nil }

func (d *fakeDB) Begin(context.Context) (database.Tx, error) {
	d.beginCalls++
	if d.beginErr != nil {
		return nil, d.beginErr
	}
	if d.tx == nil {
		d.tx = &fakeTx{}
	}
	return d.tx, nil
}

type mockAppRepo struct {
	detail    repository.ApplicationDetail
	getErr    error
	setStatus []application.Status
	setErr    error
}

func (m *mockAppRepo) GetForCompany(context.Context, database.Querier, uuid.UUID, uuid.UUID) (repository.ApplicationDetail, error) {
	if m.getErr != nil {
		return repository.ApplicationDetail{}, m.getErr
	}
	return m.detail, nil
}

func (m *mockAppRepo) SetStatus(_ context.Context, _ database.Querier, _ uuid.UUID, status application.Status) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.setStatus = append(m.setStatus, status)
	return nil
}

type mockScheduleRepo struct {
	hasActive    bool
	hasActiveErr error
	slotCount    int64
	countErr     error
	lockErr      error
	inserted     []schedule.Schedule
	insertErr    error
	rows         []repository.ScheduleRow
	listErr      error
}

func (m *mockScheduleRepo) HasActiveForApplication(context.Context, database.Querier, uuid.UUID) (bool, error) {
	return m.hasActive, m.hasActiveErr
}

func (m *mockScheduleRepo) CountActiveAtSlot(context.Context, database.Querier, uuid.UUID, time.Time, string) (int64, error) {
	return m.slotCount, m.countErr
}

func (m *mockScheduleRepo) AcquireSlotLock(context.Context, database.Querier, uuid.UUID, time.Time, string) error {
	return m.lockErr
}

func (m *mockScheduleRepo) Insert(_ context.Context, _ database.Querier, s schedule.Schedule) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.inserted = append(m.inserted, s)
	return nil
}

func (m *mockScheduleRepo) ListForCompany(context.Context, database.Querier, uuid.UUID) ([]repository.ScheduleRow, error) {
	return m.rows, m.listErr
}

func (m *mockScheduleRepo) ListAll(context.Context, database.Querier) ([]repository.ScheduleRow, error) {
	return m.rows, m.listErr
}

type mockUserRepoForSchedule struct {
	adminID  uuid.UUID
	adminErr error
}

func (m *mockUserRepoForSchedule) GetByID(context.Context, uuid.UUID) (user.User, error) {
	return user.User{}, user.ErrNotFound
}

func (m *mockUserRepoForSchedule) GetByEmail(context.Context, string) (user.User, error) {
	return user.User{}, user.ErrNotFound
}

func (m *mockUserRepoForSchedule) FindAdminID(context.Context) (uuid.UUID, error) {
	if m.adminErr != nil {
		return uuid.Nil, m.adminErr
	}
	return m.adminID, nil
}

type notifyCall struct {
	userID    uuid.UUID
	title     string
	notifType string
}

type mockNotifier struct {
	calls []notifyCall
	err   error
}

func (m *mockNotifier) Notify(_ context.Context, userID uuid.UUID, title, notifType, _ string, _ *string) error {
	m.calls = append(m.calls, notifyCall{userID: userID, title: title, notifType: notifType})
	return m.err
}

var fixedNow = time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)

func newTestScheduler(db *fakeDB, apps *mockAppRepo, schedules *mockScheduleRepo, users *mockUserRepoForSchedule, notifier *mockNotifier) *Scheduler {
	u := NewScheduleUsecase(db, apps, schedules, users, notifier, nil)
	u.now = func() time.Time { return fixedNow }
	return u
}

func pendingApplication(companyID uuid.UUID) repository.ApplicationDetail {
	return repository.ApplicationDetail{
		ID:            uuid.New(),
		ApplicantID:   uuid.New(),
		ApplicantName: "Jane Doe",
		JobID:         uuid.New(),
		JobTitle:      "Backend Engineer",
		CompanyID:     companyID,
		Deadline:      fixedNow.AddDate(0, 0, 30),
		Status:        application.StatusPending,
	}
}

func validOnsiteInput(companyID uuid.UUID) ScheduleInput {
	return ScheduleInput{
		ApplicationID: uuid.New(),
		CompanyID:     companyID,
		InterviewDate: "2025-06-01",
		InterviewTime: "14:00",
		Mode:          "onsite",
		Location:      "HQ",
	}
}

func TestScheduleInterview_CollectsAllValidationErrors(t *testing.T) {
	db := &fakeDB{}
	u := newTestScheduler(db, &mockAppRepo{}, &mockScheduleRepo{}, &mockUserRepoForSchedule{}, &mockNotifier{})

	_, err := u.ScheduleInterview(context.Background(), ScheduleInput{
		ApplicationID: uuid.New(),
		CompanyID:     uuid.New(),
	})

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Fields) != 3 {
		t.Fatalf("expected 3 field errors (date, time, mode), got %d: %v", len(verr.Fields), verr.Fields)
	}
	if db.beginCalls != 0 {
		t.Fatalf("transaction must not be opened on validation failure")
	}
}

func TestScheduleInterview_InvalidLinkFailsBeforeStorage(t *testing.T) {
	db := &fakeDB{}
	u := newTestScheduler(db, &mockAppRepo{}, &mockScheduleRepo{}, &mockUserRepoForSchedule{}, &mockNotifier{})

	in := validOnsiteInput(uuid.New())
	in.Mode = "online"
	in.Location = ""
	in.Link = "not-a-url"

	_, err := u.ScheduleInterview(context.Background(), in)

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Fields[0].Field != "interview_link" {
		t.Fatalf("expected interview_link error, got %v", verr.Fields)
	}
	if db.beginCalls != 0 {
		t.Fatalf("transaction must not be opened on validation failure")
	}
}

func TestScheduleInterview_DateBounds(t *testing.T) {
	cases := []struct {
		name string
		date string
	}{
		{name: "past", date: "2025-04-30"},
		{name: "beyond six months", date: "2025-11-02"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			u := newTestScheduler(&fakeDB{}, &mockAppRepo{}, &mockScheduleRepo{}, &mockUserRepoForSchedule{}, &mockNotifier{})

			in := validOnsiteInput(uuid.New())
			in.InterviewDate = tc.date

			_, err := u.ScheduleInterview(context.Background(), in)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestScheduleInterview_Success(t *testing.T) {
	companyID := uuid.New()
	adminID := uuid.New()
	app := pendingApplication(companyID)

	db := &fakeDB{}
	apps := &mockAppRepo{detail: app}
	schedules := &mockScheduleRepo{}
	notifier := &mockNotifier{}
	u := newTestScheduler(db, apps, schedules, &mockUserRepoForSchedule{adminID: adminID}, notifier)

	id, err := u.ScheduleInterview(context.Background(), validOnsiteInput(companyID))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if id == uuid.Nil {
		t.Fatalf("expected schedule id")
	}

	if len(schedules.inserted) != 1 {
		t.Fatalf("expected 1 insert, got %d", len(schedules.inserted))
	}
	s := schedules.inserted[0]
	if s.Status != schedule.StatusProposed {
		t.Fatalf("expected proposed status, got %s", s.Status)
	}
	if s.Mode != schedule.ModeOnsite || s.Location == nil || *s.Location != "HQ" {
		t.Fatalf("unexpected mode/location: %+v", s)
	}
	if s.InterviewTime != "14:00" {
		t.Fatalf("unexpected time: %s", s.InterviewTime)
	}

	if len(apps.setStatus) != 1 || apps.setStatus[0] != application.StatusInterview {
		t.Fatalf("expected application status update to interview, got %v", apps.setStatus)
	}
	if !db.tx.committed {
		t.Fatalf("expected commit")
	}

	if len(notifier.calls) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(notifier.calls))
	}
	if notifier.calls[0].userID != app.ApplicantID || notifier.calls[0].title != "Interview Scheduled" {
		t.Fatalf("unexpected applicant notification: %+v", notifier.calls[0])
	}
	if notifier.calls[1].userID != adminID || notifier.calls[1].title != "New Interview Schedule" {
		t.Fatalf("unexpected admin notification: %+v", notifier.calls[1])
	}
}

func TestScheduleInterview_NotFoundOrUnauthorized(t *testing.T) {
	db := &fakeDB{}
	apps := &mockAppRepo{getErr: repository.ErrApplicationNotFound}
	u := newTestScheduler(db, apps, &mockScheduleRepo{}, &mockUserRepoForSchedule{}, &mockNotifier{})

	_, err := u.ScheduleInterview(context.Background(), validOnsiteInput(uuid.New()))
	if !errors.Is(err, ErrNotFoundOrUnauthorized) {
		t.Fatalf("expected ErrNotFoundOrUnauthorized, got %v", err)
	}
	if !db.tx.rolledBack {
		t.Fatalf("expected rollback")
	}
}

func TestScheduleInterview_JobExpired(t *testing.T) {
	companyID := uuid.New()
	app := pendingApplication(companyID)
	app.Deadline = fixedNow.AddDate(0, 0, -1)

	db := &fakeDB{}
	notifier := &mockNotifier{}
	u := newTestScheduler(db, &mockAppRepo{detail: app}, &mockScheduleRepo{}, &mockUserRepoForSchedule{}, notifier)

	_, err := u.ScheduleInterview(context.Background(), validOnsiteInput(companyID))
	if !errors.Is(err, ErrJobExpired) {
		t.Fatalf("expected ErrJobExpired, got %v", err)
	}
	if !db.tx.rolledBack || db.tx.committed {
		t.Fatalf("expected rollback without commit")
	}
	if len(notifier.calls) != 0 {
		t.Fatalf("no notifications on failure")
	}
}

func TestScheduleInterview_InvalidApplicationState(t *testing.T) {
	companyID := uuid.New()
	app := pendingApplication(companyID)
	app.Status = application.StatusInterview

	u := newTestScheduler(&fakeDB{}, &mockAppRepo{detail: app}, &mockScheduleRepo{}, &mockUserRepoForSchedule{}, &mockNotifier{})

	_, err := u.ScheduleInterview(context.Background(), validOnsiteInput(companyID))
	if !errors.Is(err, ErrInvalidApplicationState) {
		t.Fatalf("expected ErrInvalidApplicationState, got %v", err)
	}
}

func TestScheduleInterview_DuplicateSchedule(t *testing.T) {
	companyID := uuid.New()
	schedules := &mockScheduleRepo{hasActive: true}

	db := &fakeDB{}
	u := newTestScheduler(db, &mockAppRepo{detail: pendingApplication(companyID)}, schedules, &mockUserRepoForSchedule{}, &mockNotifier{})

	_, err := u.ScheduleInterview(context.Background(), validOnsiteInput(companyID))
	if !errors.Is(err, ErrDuplicateSchedule) {
		t.Fatalf("expected ErrDuplicateSchedule, got %v", err)
	}
	if len(schedules.inserted) != 0 {
		t.Fatalf("nothing may be inserted on duplicate")
	}
	if !db.tx.rolledBack {
		t.Fatalf("expected rollback")
	}
}

func TestScheduleInterview_CompanyDoubleBooked(t *testing.T) {
	companyID := uuid.New()
	schedules := &mockScheduleRepo{slotCount: 1}

	db := &fakeDB{}
	u := newTestScheduler(db, &mockAppRepo{detail: pendingApplication(companyID)}, schedules, &mockUserRepoForSchedule{}, &mockNotifier{})

	_, err := u.ScheduleInterview(context.Background(), validOnsiteInput(companyID))
	if !errors.Is(err, ErrCompanyDoubleBooked) {
		t.Fatalf("expected ErrCompanyDoubleBooked, got %v", err)
	}
	if len(schedules.inserted) != 0 {
		t.Fatalf("nothing may be inserted on conflict")
	}
	if !db.tx.rolledBack {
		t.Fatalf("expected rollback")
	}
}

func TestScheduleInterview_LostRaceMapsToSlotUnavailable(t *testing.T) {
	companyID := uuid.New()
	schedules := &mockScheduleRepo{insertErr: repository.ErrSlotTaken}

	u := newTestScheduler(&fakeDB{}, &mockAppRepo{detail: pendingApplication(companyID)}, schedules, &mockUserRepoForSchedule{}, &mockNotifier{})

	_, err := u.ScheduleInterview(context.Background(), validOnsiteInput(companyID))
	if !errors.Is(err, ErrSlotUnavailable) {
		t.Fatalf("expected ErrSlotUnavailable, got %v", err)
	}
}

func TestScheduleInterview_NotificationFailureIsNonFatal(t *testing.T) {
	companyID := uuid.New()
	db := &fakeDB{}
	notifier := &mockNotifier{err: errors.New("smtp down")}

	u := newTestScheduler(db, &mockAppRepo{detail: pendingApplication(companyID)}, &mockScheduleRepo{}, &mockUserRepoForSchedule{adminID: uuid.New()}, notifier)

	id, err := u.ScheduleInterview(context.Background(), validOnsiteInput(companyID))
	if err != nil {
		t.Fatalf("notification failure must not fail the booking: %v", err)
	}
	if id == uuid.Nil {
		t.Fatalf("expected schedule id")
	}
	if !db.tx.committed {
		t.Fatalf("expected commit")
	}
}

func TestCheckSlot(t *testing.T) {
	companyID := uuid.New()
	appID := uuid.New()

	t.Run("application already scheduled", func(t *testing.T) {
		u := newTestScheduler(&fakeDB{}, &mockAppRepo{}, &mockScheduleRepo{hasActive: true}, &mockUserRepoForSchedule{}, &mockNotifier{})
		check, err := u.CheckSlot(context.Background(), companyID, "2025-06-01", "14:00", &appID)
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if check.Available {
			t.Fatalf("expected unavailable")
		}
	})

	t.Run("slot taken", func(t *testing.T) {
		u := newTestScheduler(&fakeDB{}, &mockAppRepo{}, &mockScheduleRepo{slotCount: 1}, &mockUserRepoForSchedule{}, &mockNotifier{})
		check, err := u.CheckSlot(context.Background(), companyID, "2025-06-01", "14:00", nil)
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if check.Available {
			t.Fatalf("expected unavailable")
		}
	})

	t.Run("free", func(t *testing.T) {
		u := newTestScheduler(&fakeDB{}, &mockAppRepo{}, &mockScheduleRepo{}, &mockUserRepoForSchedule{}, &mockNotifier{})
		check, err := u.CheckSlot(context.Background(), companyID, "2025-06-01", "14:00", &appID)
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if !check.Available {
			t.Fatalf("expected available")
		}
	})

	t.Run("invalid date", func(t *testing.T) {
		u := newTestScheduler(&fakeDB{}, &mockAppRepo{}, &mockScheduleRepo{}, &mockUserRepoForSchedule{}, &mockNotifier{})
		_, err := u.CheckSlot(context.Background(), companyID, "June 1st", "14:00", nil)
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})
}
