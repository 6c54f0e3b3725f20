package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/emifrog/SaaS-RH/internal/model"
	"github.com/emifrog/SaaS-RH/internal/repository"
	pkgerrors "github.com/emifrog/SaaS-RH/pkg/errors"
)

// testRepos aggregates all mocks so tests can seed data directly.
type testRepos struct {
	personnel    *mockPersonnelRepo
	centre       *mockCentreRepo
	trainingType *mockTrainingTypeRepo
	session      *mockSessionRepo
	registration *mockRegistrationRepo
	notification *mockNotificationRepo
}

func newTestRepos() *testRepos {
	sessions := newMockSessionRepo()
	return &testRepos{
		personnel:    newMockPersonnelRepo(),
		centre:       newMockCentreRepo(),
		trainingType: newMockTrainingTypeRepo(),
		session:      sessions,
		registration: newMockRegistrationRepo(sessions),
		notification: newMockNotificationRepo(),
	}
}

func (r *testRepos) toRepository() *repository.Repository {
	return &repository.Repository{
		Personnel:    r.personnel,
		Centre:       r.centre,
		TrainingType: r.trainingType,
		Session:      r.session,
		Registration: r.registration,
		Notification: r.notification,
	}
}

// ── Mock PersonnelRepository ──

type mockPersonnelRepo struct {
	people map[string]*model.Personnel
}

func newMockPersonnelRepo() *mockPersonnelRepo {
	return &mockPersonnelRepo{people: make(map[string]*model.Personnel)}
}

func (m *mockPersonnelRepo) GetByID(_ context.Context, id string) (*model.Personnel, error) {
	if p, ok := m.people[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPersonnelRepo) GetByBadgeNumber(_ context.Context, badge string) (*model.Personnel, error) {
	for _, p := range m.people {
		if p.BadgeNumber == badge {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPersonnelRepo) ListActiveByCentre(_ context.Context, centreID string) ([]model.Personnel, error) {
	var result []model.Personnel
	for _, p := range m.people {
		if p.CentreID == centreID && p.Status == model.PersonnelActive {
			result = append(result, *p)
		}
	}
	return result, nil
}

// ── Mock CentreRepository ──

type mockCentreRepo struct {
	centres map[string]*model.Centre
}

func newMockCentreRepo() *mockCentreRepo {
	return &mockCentreRepo{centres: make(map[string]*model.Centre)}
}

func (m *mockCentreRepo) GetByID(_ context.Context, id string) (*model.Centre, error) {
	if c, ok := m.centres[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCentreRepo) List(_ context.Context) ([]model.Centre, error) {
	var result []model.Centre
	for _, c := range m.centres {
		result = append(result, *c)
	}
	return result, nil
}

// ── Mock TrainingTypeRepository ──

type mockTrainingTypeRepo struct {
	types map[string]*model.TrainingType
}

func newMockTrainingTypeRepo() *mockTrainingTypeRepo {
	return &mockTrainingTypeRepo{types: make(map[string]*model.TrainingType)}
}

func (m *mockTrainingTypeRepo) GetByID(_ context.Context, id string) (*model.TrainingType, error) {
	if t, ok := m.types[id]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTrainingTypeRepo) List(_ context.Context) ([]model.TrainingType, error) {
	var result []model.TrainingType
	for _, t := range m.types {
		result = append(result, *t)
	}
	return result, nil
}

// ── Mock SessionRepository ──

type mockSessionRepo struct {
	sessions map[string]*model.Session
	seq      int
	// updateHook runs against the stored row just before Update's
	// guards, standing in for a concurrent write that commits between
	// the service's read and its write.
	updateHook func(stored *model.Session)
}

func newMockSessionRepo() *mockSessionRepo {
	return &mockSessionRepo{sessions: make(map[string]*model.Session)}
}

func (m *mockSessionRepo) Create(_ context.Context, session *model.Session) error {
	if session.SessionID == "" {
		m.seq++
		session.SessionID = fmt.Sprintf("sess-%d", m.seq)
	}
	if session.Version == 0 {
		session.Version = 1
	}
	m.sessions[session.SessionID] = session
	return nil
}

func (m *mockSessionRepo) GetByID(_ context.Context, id string) (*model.Session, error) {
	if s, ok := m.sessions[id]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSessionRepo) List(_ context.Context, filter repository.SessionFilter) ([]model.Session, int64, error) {
	var result []model.Session
	for _, s := range m.sessions {
		if filter.StartFrom != nil && s.StartAt.Before(*filter.StartFrom) {
			continue
		}
		if filter.StartTo != nil && !s.StartAt.Before(*filter.StartTo) {
			continue
		}
		if filter.CentreID != "" && s.CentreID != filter.CentreID {
			continue
		}
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		if filter.InstructorID != "" && s.InstructorID != filter.InstructorID {
			continue
		}
		if filter.TypeID != "" && s.TrainingTypeID != filter.TypeID {
			continue
		}
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool {
		if filter.SortDesc {
			return result[i].StartAt.After(result[j].StartAt)
		}
		return result[i].StartAt.Before(result[j].StartAt)
	})
	return result, int64(len(result)), nil
}

func (m *mockSessionRepo) Update(_ context.Context, session *model.Session) error {
	stored, ok := m.sessions[session.SessionID]
	if !ok {
		return pkgerrors.ErrOptimisticLock
	}
	if m.updateHook != nil {
		m.updateHook(stored)
		m.updateHook = nil
	}
	// Mirrors the single-statement WHERE: version match plus occupancy
	// fitting the written max_seats, or nothing is applied.
	if stored.Version != session.Version || stored.OccupiedSeats > session.MaxSeats {
		return pkgerrors.ErrOptimisticLock
	}
	session.Version++
	copied := *session
	copied.OccupiedSeats = stored.OccupiedSeats
	m.sessions[session.SessionID] = &copied
	return nil
}

func (m *mockSessionRepo) Delete(_ context.Context, id string) error {
	delete(m.sessions, id)
	return nil
}

func (m *mockSessionRepo) ListForReport(_ context.Context, start, end time.Time, centreID string) ([]model.Session, error) {
	var result []model.Session
	for _, s := range m.sessions {
		if s.StartAt.Before(start) || !s.StartAt.Before(end) {
			continue
		}
		if centreID != "" && s.CentreID != centreID {
			continue
		}
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartAt.Before(result[j].StartAt) })
	return result, nil
}

func (m *mockSessionRepo) HasInstructorConflict(_ context.Context, instructorID string, start, end time.Time, excludeSessionID string) (bool, error) {
	for _, s := range m.sessions {
		if s.InstructorID != instructorID || s.Status == model.SessionCancelled {
			continue
		}
		if s.SessionID == excludeSessionID {
			continue
		}
		if s.StartAt.Before(end) && s.EndAt.After(start) {
			return true, nil
		}
	}
	return false, nil
}

// ── Mock RegistrationRepository ──

type mockRegistrationRepo struct {
	regs     map[string]*model.Registration // keyed sessionID + "/" + personnelID
	sessions *mockSessionRepo               // shared so seat counters stay honest
	seq      int
	// deleteHook and reviveHook run against the stored row before the
	// guarded write, standing in for a concurrent status change that
	// commits between the service's read and the write.
	deleteHook func(stored *model.Registration)
	reviveHook func(stored *model.Registration)
}

func newMockRegistrationRepo(sessions *mockSessionRepo) *mockRegistrationRepo {
	return &mockRegistrationRepo{
		regs:     make(map[string]*model.Registration),
		sessions: sessions,
	}
}

func regKey(sessionID, personnelID string) string {
	return sessionID + "/" + personnelID
}

func (m *mockRegistrationRepo) GetBySessionAndPersonnel(_ context.Context, sessionID, personnelID string) (*model.Registration, error) {
	if r, ok := m.regs[regKey(sessionID, personnelID)]; ok {
		copied := *r
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRegistrationRepo) ListBySession(_ context.Context, sessionID string) ([]model.Registration, error) {
	var result []model.Registration
	for _, r := range m.regs {
		if r.SessionID == sessionID {
			result = append(result, *r)
		}
	}
	return result, nil
}

func (m *mockRegistrationRepo) CountLiveBySession(_ context.Context, sessionID string) (int64, error) {
	var count int64
	for _, r := range m.regs {
		if r.SessionID == sessionID && model.LiveRegistrationStatus(r.Status) {
			count++
		}
	}
	return count, nil
}

func (m *mockRegistrationRepo) CreateWithSeat(_ context.Context, reg *model.Registration) error {
	session, ok := m.sessions.sessions[reg.SessionID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if session.OccupiedSeats >= session.MaxSeats {
		return repository.ErrNoSeatAvailable
	}
	if _, exists := m.regs[regKey(reg.SessionID, reg.PersonnelID)]; exists {
		return repository.ErrDuplicateRegistration
	}
	session.OccupiedSeats++
	m.seq++
	reg.RegistrationID = fmt.Sprintf("reg-%d", m.seq)
	copied := *reg
	m.regs[regKey(reg.SessionID, reg.PersonnelID)] = &copied
	return nil
}

func (m *mockRegistrationRepo) DeleteWithSeat(_ context.Context, sessionID, personnelID string) error {
	key := regKey(sessionID, personnelID)
	stored, ok := m.regs[key]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if m.deleteHook != nil {
		m.deleteHook(stored)
		m.deleteHook = nil
	}
	// A cancelled row already gave its seat back; the guarded DELETE
	// matches live rows only.
	if stored.Status == model.RegistrationCancelled {
		return gorm.ErrRecordNotFound
	}
	delete(m.regs, key)
	if session, ok := m.sessions.sessions[sessionID]; ok && session.OccupiedSeats > 0 {
		session.OccupiedSeats--
	}
	return nil
}

func (m *mockRegistrationRepo) ReviveWithSeat(_ context.Context, registrationID, sessionID string) error {
	session, ok := m.sessions.sessions[sessionID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	var stored *model.Registration
	for _, r := range m.regs {
		if r.RegistrationID == registrationID {
			stored = r
			break
		}
	}
	if stored == nil {
		return gorm.ErrRecordNotFound
	}
	if m.reviveHook != nil {
		m.reviveHook(stored)
		m.reviveHook = nil
	}
	if session.OccupiedSeats >= session.MaxSeats {
		return repository.ErrNoSeatAvailable
	}
	// The guarded UPDATE only matches a still-cancelled row; a
	// concurrent revive that won the row leaves nothing to flip.
	if stored.Status != model.RegistrationCancelled {
		return repository.ErrDuplicateRegistration
	}
	session.OccupiedSeats++
	stored.Status = model.RegistrationRegistered
	stored.Signature = nil
	stored.SignedAt = nil
	stored.ValidatedHours = nil
	stored.TTAAmount = nil
	return nil
}

func (m *mockRegistrationRepo) UpdateAttendance(_ context.Context, reg *model.Registration, seatDelta int) error {
	session, ok := m.sessions.sessions[reg.SessionID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if seatDelta > 0 && session.OccupiedSeats >= session.MaxSeats {
		return repository.ErrNoSeatAvailable
	}
	session.OccupiedSeats += seatDelta
	if session.OccupiedSeats < 0 {
		session.OccupiedSeats = 0
	}
	copied := *reg
	m.regs[regKey(reg.SessionID, reg.PersonnelID)] = &copied
	return nil
}

func (m *mockRegistrationRepo) ListForExport(_ context.Context, start, end time.Time, centreID string) ([]model.Registration, error) {
	var result []model.Registration
	for _, r := range m.regs {
		session, ok := m.sessions.sessions[r.SessionID]
		if !ok || session.Status != model.SessionCompleted {
			continue
		}
		if session.StartAt.Before(start) || session.StartAt.After(end) {
			continue
		}
		if r.Status != model.RegistrationPresent || r.ValidatedHours == nil {
			continue
		}
		if centreID != "" && session.CentreID != centreID {
			continue
		}
		copied := *r
		sessCopy := *session
		copied.Session = &sessCopy
		result = append(result, copied)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Session.StartAt.Equal(result[j].Session.StartAt) {
			return result[i].Session.StartAt.Before(result[j].Session.StartAt)
		}
		li, lj := "", ""
		if result[i].Personnel != nil {
			li = result[i].Personnel.LastName
		}
		if result[j].Personnel != nil {
			lj = result[j].Personnel.LastName
		}
		return li < lj
	})
	return result, nil
}

// ── Mock NotificationRepository ──

type mockNotificationRepo struct {
	rows []model.Notification
	seq  int
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{}
}

func (m *mockNotificationRepo) Create(_ context.Context, n *model.Notification) error {
	m.seq++
	n.NotificationID = fmt.Sprintf("notif-%d", m.seq)
	m.rows = append(m.rows, *n)
	return nil
}

func (m *mockNotificationRepo) BatchCreate(_ context.Context, ns []model.Notification) error {
	for i := range ns {
		m.seq++
		ns[i].NotificationID = fmt.Sprintf("notif-%d", m.seq)
		m.rows = append(m.rows, ns[i])
	}
	return nil
}

func (m *mockNotificationRepo) ListByPersonnel(_ context.Context, personnelID string, unreadOnly bool, offset, limit int) ([]model.Notification, int64, error) {
	var result []model.Notification
	for _, n := range m.rows {
		if n.PersonnelID != personnelID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		result = append(result, n)
	}
	total := int64(len(result))
	if offset >= len(result) {
		return nil, total, nil
	}
	result = result[offset:]
	if limit > 0 && limit < len(result) {
		result = result[:limit]
	}
	return result, total, nil
}

func (m *mockNotificationRepo) MarkRead(_ context.Context, notificationID, personnelID string) error {
	for i := range m.rows {
		if m.rows[i].NotificationID == notificationID && m.rows[i].PersonnelID == personnelID {
			m.rows[i].IsRead = true
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}
