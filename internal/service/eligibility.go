package service

import (
	"errors"
	"time"

	"github.com/emifrog/SaaS-RH/internal/model"
)

// Registration denial reasons, ordered as they are evaluated.
var (
	ErrSessionNotOpen    = errors.New("session is not open for registration")
	ErrSessionFull       = errors.New("session is full")
	ErrPersonnelInactive = errors.New("personnel is not active")
	ErrMedicalUnfit      = errors.New("medical fitness status forbids registration")
	ErrMedicalExpired    = errors.New("medical examination has expired")
	ErrAlreadyRegistered = errors.New("personnel is already registered on this session")
)

// CheckEligibility decides whether person may register into session.
// Rules run in order and the first failure wins. existing is the
// person's current registration on the session, nil if none.
//
// A person with no medical record at all is allowed through; only an
// explicit INAPTE status or an overdue next-exam date denies. That
// mirrors the established behaviour and is a recorded policy decision,
// not an oversight.
//
// Pure predicate: no side effects. The caller applies the registration
// and the seat increment as one transaction.
func CheckEligibility(person *model.Personnel, session *model.Session, existing *model.Registration, now time.Time) error {
	if !session.IsOpen() {
		return ErrSessionNotOpen
	}
	if session.IsFull() {
		return ErrSessionFull
	}
	if person.Status != model.PersonnelActive {
		return ErrPersonnelInactive
	}
	if !person.MedicallyEligible(now) {
		if *person.MedicalStatus == model.MedicalUnfit {
			return ErrMedicalUnfit
		}
		return ErrMedicalExpired
	}
	if existing != nil && model.LiveRegistrationStatus(existing.Status) {
		return ErrAlreadyRegistered
	}
	return nil
}
