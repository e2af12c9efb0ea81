package entities

import "time"

// OnboardingState tracks how far a user has progressed through first-run
// setup in the mobile client. States only ever advance; callers must not
// move a user backwards.
type OnboardingState string

const (
	OnboardingWelcome   OnboardingState = "welcome"
	OnboardingFirstStep OnboardingState = "first-step"
	OnboardingIntro     OnboardingState = "intro"
	OnboardingCompleted OnboardingState = "completed"
)

var onboardingOrder = map[OnboardingState]int{
	OnboardingWelcome:   0,
	OnboardingFirstStep: 1,
	OnboardingIntro:     2,
	OnboardingCompleted: 3,
}

// Valid reports whether s is one of the known onboarding states.
func (s OnboardingState) Valid() bool {
	_, ok := onboardingOrder[s]
	return ok
}

// Precedes reports whether s comes strictly before other in the onboarding
// sequence. Used to reject transitions that would regress a user's progress.
func (s OnboardingState) Precedes(other OnboardingState) bool {
	return onboardingOrder[s] < onboardingOrder[other]
}

// User represents a journaling user in the system
type User struct {
	ID          string  `json:"id" db:"id"`
	Email       string  `json:"email" db:"email"` // unique, lowercased
	DisplayName string  `json:"display_name" db:"display_name"`
	AvatarURL   *string `json:"avatar_url,omitempty" db:"avatar_url"`
	GoogleID    *string `json:"-" db:"google_id"` // provider subject, unique when present

	Onboarding OnboardingState `json:"onboarding" db:"onboarding"`

	// Notification preferences
	DailyReminder bool    `json:"daily_reminder" db:"daily_reminder"`
	ReminderTime  *string `json:"reminder_time,omitempty" db:"reminder_time"` // "HH:MM", client-local
	WeeklyDigest  bool    `json:"weekly_digest" db:"weekly_digest"`

	// Usage statistics, maintained by the entry service
	TotalEntries int        `json:"total_entries" db:"total_entries"`
	StreakDays   int        `json:"streak_days" db:"streak_days"`
	LastEntryAt  *time.Time `json:"last_entry_at,omitempty" db:"last_entry_at"`
	JoinedAt     time.Time  `json:"joined_at" db:"joined_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NewUser creates a user with the defaults every fresh signup gets.
func NewUser(email, displayName string, googleID *string) *User {
	now := time.Now()
	return &User{
		Email:         email,
		DisplayName:   displayName,
		GoogleID:      googleID,
		Onboarding:    OnboardingWelcome,
		DailyReminder: true,
		WeeklyDigest:  true,
		JoinedAt:      now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// RecordEntry updates the usage statistics for a newly written entry.
// Streaks count consecutive UTC calendar days with at least one entry.
func (u *User) RecordEntry(now time.Time) {
	u.TotalEntries++

	today := now.UTC().Truncate(24 * time.Hour)
	switch {
	case u.LastEntryAt == nil:
		u.StreakDays = 1
	case u.LastEntryAt.UTC().Truncate(24 * time.Hour).Equal(today):
		// Already wrote today, streak unchanged
	case u.LastEntryAt.UTC().Truncate(24 * time.Hour).Equal(today.AddDate(0, 0, -1)):
		u.StreakDays++
	default:
		u.StreakDays = 1
	}

	t := now
	u.LastEntryAt = &t
	u.UpdatedAt = now
}

// PublicUser is the client-facing view of a user, safe to embed in the
// post-login redirect and API responses. Internal-only fields are excluded.
type PublicUser struct {
	ID          string          `json:"id"`
	Email       string          `json:"email"`
	DisplayName string          `json:"display_name"`
	AvatarURL   string          `json:"avatar_url,omitempty"`
	Onboarding  OnboardingState `json:"onboarding"`
}

// Public returns the client-facing view of the user.
func (u *User) Public() PublicUser {
	p := PublicUser{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Onboarding:  u.Onboarding,
	}
	if u.AvatarURL != nil {
		p.AvatarURL = *u.AvatarURL
	}
	return p
}
