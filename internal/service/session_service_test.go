package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/emifrog/SaaS-RH/config"
	"github.com/emifrog/SaaS-RH/internal/dto"
	"github.com/emifrog/SaaS-RH/internal/model"
	pkgerrors "github.com/emifrog/SaaS-RH/pkg/errors"
)

func testFMPAConfig() *config.FMPAConfig {
	return &config.FMPAConfig{
		MinSeats:           5,
		MaxSeats:           15,
		ExportMaxDays:      365,
		ExportWindowMonths: 3,
	}
}

func setupTestSessionService() (SessionService, *testRepos) {
	repos := newTestRepos()
	logger := zap.NewNop()
	notifier := NewNotificationService(repos.toRepository(), NewLogMailer(logger), logger)
	svc := NewSessionService(testFMPAConfig(), repos.toRepository(), notifier, logger)
	return svc, repos
}

// seedCatalogue adds one centre, one training type and one active
// instructor.
func seedCatalogue(repos *testRepos) {
	repos.centre.centres["centre-1"] = &model.Centre{
		CentreID: "centre-1", Code: "CIS_NICE", Name: "CIS Nice", Type: "CIS",
	}
	repos.trainingType.types["type-sap"] = &model.TrainingType{
		TrainingTypeID: "type-sap", Code: "FMPA_SAP", Label: "FMPA Secours à personne",
		DurationHours: 7.5, HourlyRate: 12.50,
	}
	repos.personnel.people["instr-1"] = &model.Personnel{
		PersonnelID: "instr-1", BadgeNumber: "M1001",
		LastName: "Durand", FirstName: "Paul",
		Role: model.RoleFormateur, Status: model.PersonnelActive,
		CentreID: "centre-1",
	}
}

func validCreateRequest(start, end time.Time) *dto.CreateSessionRequest {
	return &dto.CreateSessionRequest{
		TrainingTypeID: "type-sap",
		CentreID:       "centre-1",
		InstructorID:   "instr-1",
		StartAt:        start.Format(time.RFC3339),
		EndAt:          end.Format(time.RFC3339),
		Location:       "Centre de formation, Nice",
		MaxSeats:       10,
		TTACode:        "TTA_FMPA_SAP",
	}
}

func TestSessionCreate(t *testing.T) {
	start := time.Now().Add(48 * time.Hour).Truncate(time.Second)
	end := start.Add(4 * time.Hour)

	t.Run("success with defaulted hourly rate", func(t *testing.T) {
		svc, repos := setupTestSessionService()
		seedCatalogue(repos)

		session, err := svc.Create(context.Background(), validCreateRequest(start, end))
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if session.Status != model.SessionPlanned {
			t.Errorf("status = %s, want PLANIFIE", session.Status)
		}
		if session.HourlyRate != 12.50 {
			t.Errorf("hourly rate = %v, want 12.50 from catalogue", session.HourlyRate)
		}
		if session.OccupiedSeats != 0 {
			t.Errorf("occupied seats = %d, want 0", session.OccupiedSeats)
		}
	})

	t.Run("explicit hourly rate wins", func(t *testing.T) {
		svc, repos := setupTestSessionService()
		seedCatalogue(repos)

		req := validCreateRequest(start, end)
		req.HourlyRate = 15.00
		session, err := svc.Create(context.Background(), req)
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if session.HourlyRate != 15.00 {
			t.Errorf("hourly rate = %v, want 15.00", session.HourlyRate)
		}
	})

	t.Run("end before start", func(t *testing.T) {
		svc, repos := setupTestSessionService()
		seedCatalogue(repos)

		req := validCreateRequest(end, start)
		if _, err := svc.Create(context.Background(), req); !errors.Is(err, ErrInvalidDates) {
			t.Fatalf("Create() error = %v, want ErrInvalidDates", err)
		}
	})

	t.Run("start in past", func(t *testing.T) {
		svc, repos := setupTestSessionService()
		seedCatalogue(repos)

		past := time.Now().Add(-24 * time.Hour)
		req := validCreateRequest(past, past.Add(4*time.Hour))
		if _, err := svc.Create(context.Background(), req); !errors.Is(err, ErrStartInPast) {
			t.Fatalf("Create() error = %v, want ErrStartInPast", err)
		}
	})

	t.Run("seats outside band", func(t *testing.T) {
		svc, repos := setupTestSessionService()
		seedCatalogue(repos)

		for _, seats := range []int{4, 16} {
			req := validCreateRequest(start, end)
			req.MaxSeats = seats
			if _, err := svc.Create(context.Background(), req); !errors.Is(err, ErrSeatsOutOfBand) {
				t.Fatalf("Create(maxSeats=%d) error = %v, want ErrSeatsOutOfBand", seats, err)
			}
		}
	})

	t.Run("unknown training type", func(t *testing.T) {
		svc, repos := setupTestSessionService()
		seedCatalogue(repos)

		req := validCreateRequest(start, end)
		req.TrainingTypeID = "type-missing"
		if _, err := svc.Create(context.Background(), req); !errors.Is(err, ErrTrainingTypeNotFound) {
			t.Fatalf("Create() error = %v, want ErrTrainingTypeNotFound", err)
		}
	})

	t.Run("inactive instructor", func(t *testing.T) {
		svc, repos := setupTestSessionService()
		seedCatalogue(repos)
		repos.personnel.people["instr-1"].Status = model.PersonnelInactive

		if _, err := svc.Create(context.Background(), validCreateRequest(start, end)); !errors.Is(err, ErrInstructorInactive) {
			t.Fatalf("Create() error = %v, want ErrInstructorInactive", err)
		}
	})
}

func TestSessionCreateInstructorConflict(t *testing.T) {
	start := time.Now().Add(48 * time.Hour).Truncate(time.Second)
	end := start.Add(3 * time.Hour)

	svc, repos := setupTestSessionService()
	seedCatalogue(repos)

	if _, err := svc.Create(context.Background(), validCreateRequest(start, end)); err != nil {
		t.Fatalf("first Create() error = %v", err)
	}

	t.Run("overlapping window rejected", func(t *testing.T) {
		req := validCreateRequest(start.Add(time.Hour), end.Add(time.Hour))
		if _, err := svc.Create(context.Background(), req); !errors.Is(err, ErrInstructorConflict) {
			t.Fatalf("Create() error = %v, want ErrInstructorConflict", err)
		}
	})

	t.Run("back to back windows allowed", func(t *testing.T) {
		// [end, end+3h) touches the first session only at its boundary.
		req := validCreateRequest(end, end.Add(3*time.Hour))
		if _, err := svc.Create(context.Background(), req); err != nil {
			t.Fatalf("Create() error = %v, want nil for adjacent window", err)
		}
	})

	t.Run("overlap with cancelled session allowed", func(t *testing.T) {
		for _, s := range repos.session.sessions {
			s.Status = model.SessionCancelled
		}
		req := validCreateRequest(start, end)
		if _, err := svc.Create(context.Background(), req); err != nil {
			t.Fatalf("Create() error = %v, want nil once conflicts are cancelled", err)
		}
	})
}

func seedSession(repos *testRepos, status string, occupied int) *model.Session {
	start := time.Now().Add(72 * time.Hour).Truncate(time.Second)
	session := &model.Session{
		SessionID:      "sess-fixed",
		TrainingTypeID: "type-sap",
		CentreID:       "centre-1",
		InstructorID:   "instr-1",
		StartAt:        start,
		EndAt:          start.Add(4 * time.Hour),
		Location:       "Centre de formation, Nice",
		MaxSeats:       10,
		OccupiedSeats:  occupied,
		Status:         status,
		TTACode:        "TTA_FMPA_SAP",
		HourlyRate:     12.50,
	}
	session.Version = 1
	repos.session.sessions[session.SessionID] = session
	return session
}

func TestSessionUpdate(t *testing.T) {
	strPtr := func(s string) *string { return &s }
	intPtr := func(i int) *int { return &i }

	t.Run("legal transition", func(t *testing.T) {
		svc, repos := setupTestSessionService()
		seedCatalogue(repos)
		seedSession(repos, model.SessionPlanned, 0)

		updated, err := svc.Update(context.Background(), "sess-fixed",
			&dto.UpdateSessionRequest{Status: strPtr(model.SessionConfirmed)})
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if updated.Status != model.SessionConfirmed {
			t.Errorf("status = %s, want CONFIRME", updated.Status)
		}
		if updated.Version != 2 {
			t.Errorf("version = %d, want 2", updated.Version)
		}
	})

	t.Run("illegal transition", func(t *testing.T) {
		svc, repos := setupTestSessionService()
		seedCatalogue(repos)
		seedSession(repos, model.SessionPlanned, 0)

		_, err := svc.Update(context.Background(), "sess-fixed",
			&dto.UpdateSessionRequest{Status: strPtr(model.SessionCompleted)})
		if !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("Update() error = %v, want ErrInvalidTransition", err)
		}
	})

	t.Run("terminal session locked", func(t *testing.T) {
		svc, repos := setupTestSessionService()
		seedCatalogue(repos)
		seedSession(repos, model.SessionCompleted, 3)

		_, err := svc.Update(context.Background(), "sess-fixed",
			&dto.UpdateSessionRequest{Location: strPtr("Ailleurs")})
		if !errors.Is(err, ErrSessionLocked) {
			t.Fatalf("Update() error = %v, want ErrSessionLocked", err)
		}
	})

	t.Run("terminal status reapply is a no-op", func(t *testing.T) {
		svc, repos := setupTestSessionService()
		seedCatalogue(repos)
		seedSession(repos, model.SessionCancelled, 0)

		updated, err := svc.Update(context.Background(), "sess-fixed",
			&dto.UpdateSessionRequest{Status: strPtr(model.SessionCancelled)})
		if err != nil {
			t.Fatalf("Update() error = %v, want idempotent success", err)
		}
		if updated.Version != 1 {
			t.Errorf("version = %d, want unchanged 1", updated.Version)
		}
	})

	t.Run("resize below occupancy", func(t *testing.T) {
		svc, repos := setupTestSessionService()
		seedCatalogue(repos)
		seedSession(repos, model.SessionPlanned, 8)

		_, err := svc.Update(context.Background(), "sess-fixed",
			&dto.UpdateSessionRequest{MaxSeats: intPtr(6)})
		if !errors.Is(err, ErrCapacityBelowOccupancy) {
			t.Fatalf("Update() error = %v, want ErrCapacityBelowOccupancy", err)
		}
	})

	t.Run("resize above occupancy", func(t *testing.T) {
		svc, repos := setupTestSessionService()
		seedCatalogue(repos)
		seedSession(repos, model.SessionPlanned, 8)

		updated, err := svc.Update(context.Background(), "sess-fixed",
			&dto.UpdateSessionRequest{MaxSeats: intPtr(12)})
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if updated.MaxSeats != 12 {
			t.Errorf("max seats = %d, want 12", updated.MaxSeats)
		}
	})

	t.Run("concurrent edit rolls back the whole update", func(t *testing.T) {
		svc, repos := setupTestSessionService()
		seedCatalogue(repos)
		seedSession(repos, model.SessionPlanned, 3)

		// Another edit commits between our read and our write.
		repos.session.updateHook = func(stored *model.Session) {
			stored.Version++
		}

		_, err := svc.Update(context.Background(), "sess-fixed",
			&dto.UpdateSessionRequest{
				MaxSeats: intPtr(12),
				Location: strPtr("Caserne Magnan"),
			})
		if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			t.Fatalf("Update() error = %v, want ErrOptimisticLock", err)
		}

		stored := repos.session.sessions["sess-fixed"]
		if stored.MaxSeats != 10 || stored.Location != "Centre de formation, Nice" {
			t.Errorf("lost update left partial state: max_seats=%d location=%q",
				stored.MaxSeats, stored.Location)
		}
	})

	t.Run("shrink racing a registration", func(t *testing.T) {
		svc, repos := setupTestSessionService()
		seedCatalogue(repos)
		seedSession(repos, model.SessionPlanned, 5)

		// Registrations land after our occupancy read; the write's own
		// guard must refuse the now-too-small capacity.
		repos.session.updateHook = func(stored *model.Session) {
			stored.OccupiedSeats = 7
		}

		_, err := svc.Update(context.Background(), "sess-fixed",
			&dto.UpdateSessionRequest{MaxSeats: intPtr(6)})
		if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			t.Fatalf("Update() error = %v, want ErrOptimisticLock", err)
		}
		if got := repos.session.sessions["sess-fixed"].MaxSeats; got != 10 {
			t.Errorf("max seats = %d, want 10 unchanged", got)
		}
	})

	t.Run("moving the window re-checks conflicts", func(t *testing.T) {
		svc, repos := setupTestSessionService()
		seedCatalogue(repos)
		session := seedSession(repos, model.SessionPlanned, 0)

		otherStart := session.EndAt.Add(2 * time.Hour)
		other := &model.Session{
			SessionID:    "sess-other",
			InstructorID: "instr-1",
			StartAt:      otherStart,
			EndAt:        otherStart.Add(3 * time.Hour),
			Status:       model.SessionConfirmed,
		}
		other.Version = 1
		repos.session.sessions[other.SessionID] = other

		newStart := otherStart.Add(time.Hour).Format(time.RFC3339)
		newEnd := otherStart.Add(4 * time.Hour).Format(time.RFC3339)
		_, err := svc.Update(context.Background(), "sess-fixed",
			&dto.UpdateSessionRequest{StartAt: &newStart, EndAt: &newEnd})
		if !errors.Is(err, ErrInstructorConflict) {
			t.Fatalf("Update() error = %v, want ErrInstructorConflict", err)
		}
	})

	t.Run("unknown session", func(t *testing.T) {
		svc, repos := setupTestSessionService()
		seedCatalogue(repos)

		_, err := svc.Update(context.Background(), "sess-missing",
			&dto.UpdateSessionRequest{Location: strPtr("Ailleurs")})
		if !errors.Is(err, ErrSessionNotFound) {
			t.Fatalf("Update() error = %v, want ErrSessionNotFound", err)
		}
	})
}

func TestSessionDelete(t *testing.T) {
	t.Run("planned empty session deleted", func(t *testing.T) {
		svc, repos := setupTestSessionService()
		seedCatalogue(repos)
		seedSession(repos, model.SessionPlanned, 0)

		if err := svc.Delete(context.Background(), "sess-fixed"); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if _, ok := repos.session.sessions["sess-fixed"]; ok {
			t.Error("session still present after Delete()")
		}
	})

	t.Run("completed session kept", func(t *testing.T) {
		svc, repos := setupTestSessionService()
		seedCatalogue(repos)
		seedSession(repos, model.SessionCompleted, 5)

		if err := svc.Delete(context.Background(), "sess-fixed"); !errors.Is(err, ErrSessionLocked) {
			t.Fatalf("Delete() error = %v, want ErrSessionLocked", err)
		}
	})

	t.Run("session with registrants kept", func(t *testing.T) {
		svc, repos := setupTestSessionService()
		seedCatalogue(repos)
		seedSession(repos, model.SessionPlanned, 1)
		repos.registration.regs[regKey("sess-fixed", "p-1")] = &model.Registration{
			RegistrationID: "reg-1", SessionID: "sess-fixed", PersonnelID: "p-1",
			Status: model.RegistrationRegistered,
		}

		if err := svc.Delete(context.Background(), "sess-fixed"); !errors.Is(err, ErrSessionHasRegistrants) {
			t.Fatalf("Delete() error = %v, want ErrSessionHasRegistrants", err)
		}
	})
}

func TestSessionListMonthFilter(t *testing.T) {
	svc, repos := setupTestSessionService()
	seedCatalogue(repos)

	mk := func(id string, start time.Time) {
		s := &model.Session{
			SessionID: id, InstructorID: "instr-1", CentreID: "centre-1",
			StartAt: start, EndAt: start.Add(3 * time.Hour),
			Status: model.SessionPlanned, MaxSeats: 10,
		}
		s.Version = 1
		repos.session.sessions[id] = s
	}
	mk("sess-march", time.Date(2026, 3, 12, 9, 0, 0, 0, time.UTC))
	mk("sess-april", time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC))
	// First instant of April: must belong to April only, never to both
	// adjacent months.
	mk("sess-boundary", time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))

	sessions, total, err := svc.List(context.Background(), &dto.ListSessionsRequest{Month: "2026-03"})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if total != 1 || len(sessions) != 1 {
		t.Fatalf("List() returned %d sessions (total %d), want 1", len(sessions), total)
	}
	if sessions[0].SessionID != "sess-march" {
		t.Errorf("wrong session selected: %s", sessions[0].SessionID)
	}

	sessions, total, err = svc.List(context.Background(), &dto.ListSessionsRequest{Month: "2026-04", SortOrder: "asc"})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if total != 2 || len(sessions) != 2 {
		t.Fatalf("List(April) returned %d sessions (total %d), want 2", len(sessions), total)
	}
	if sessions[0].SessionID != "sess-boundary" {
		t.Errorf("first April session = %s, want sess-boundary", sessions[0].SessionID)
	}

	if _, _, err := svc.List(context.Background(), &dto.ListSessionsRequest{Month: "mars-2026"}); !errors.Is(err, ErrInvalidDates) {
		t.Errorf("List(bad month) error = %v, want ErrInvalidDates", err)
	}
}
