package models

import (
	"errors"
	"fmt"
	"strconv"
	"time"
	"unicode/utf8"
)

// SkillLevel is the self-assessed proficiency attached to a Skill.
type SkillLevel string

const (
	SkillBeginner     SkillLevel = "beginner"
	SkillIntermediate SkillLevel = "intermediate"
	SkillAdvanced     SkillLevel = "advanced"
)

// Valid reports whether l is one of the known skill levels.
func (l SkillLevel) Valid() bool {
	switch l {
	case SkillBeginner, SkillIntermediate, SkillAdvanced:
		return true
	}
	return false
}

// Experience is one entry of a profile's work history.
type Experience struct {
	ID          string `json:"id" firestore:"id"`
	Company     string `json:"company" firestore:"company"`
	Role        string `json:"role" firestore:"role"`
	StartDate   string `json:"startDate" firestore:"startDate"`
	EndDate     string `json:"endDate,omitempty" firestore:"endDate,omitempty"`
	Description string `json:"description" firestore:"description"`
}

// Education is one entry of a profile's education history.
type Education struct {
	ID           string `json:"id" firestore:"id"`
	Institution  string `json:"institution" firestore:"institution"`
	Degree       string `json:"degree" firestore:"degree"`
	FieldOfStudy string `json:"fieldOfStudy" firestore:"fieldOfStudy"`
	StartYear    int    `json:"startYear" firestore:"startYear"`
	EndYear      int    `json:"endYear" firestore:"endYear"`
}

// Skill is a named skill with a proficiency level.
type Skill struct {
	ID    string     `json:"id" firestore:"id"`
	Name  string     `json:"name" firestore:"name"`
	Level SkillLevel `json:"level" firestore:"level"`
}

// UserProfile lives in the companion `users` document, one per UID.
type UserProfile struct {
	Name        string       `json:"name" firestore:"name"`
	Email       string       `json:"email,omitempty" firestore:"email,omitempty"`
	Avatar      string       `json:"avatar" firestore:"avatar"`
	Bio         string       `json:"bio" firestore:"bio"`
	Experiences []Experience `json:"experiences" firestore:"experiences"`
	Education   []Education  `json:"education" firestore:"education"`
	Skills      []Skill      `json:"skills" firestore:"skills"`
}

// DefaultProfile is the empty profile written on first load or on sign-up.
func DefaultProfile() UserProfile {
	return UserProfile{
		Experiences: []Experience{},
		Education:   []Education{},
		Skills:      []Skill{},
	}
}

// Clone returns a deep copy so callers can hand profiles across goroutines.
func (p UserProfile) Clone() UserProfile {
	out := p
	out.Experiences = append([]Experience{}, p.Experiences...)
	out.Education = append([]Education{}, p.Education...)
	out.Skills = append([]Skill{}, p.Skills...)
	return out
}

// ProfilePatch is a partial profile update. Nil fields are left untouched
// by Apply and are not written to the remote document.
type ProfilePatch struct {
	Name        *string       `json:"name,omitempty"`
	Email       *string       `json:"email,omitempty"`
	Avatar      *string       `json:"avatar,omitempty"`
	Bio         *string       `json:"bio,omitempty"`
	Experiences *[]Experience `json:"experiences,omitempty"`
	Education   *[]Education  `json:"education,omitempty"`
	Skills      *[]Skill      `json:"skills,omitempty"`
}

// Apply merges the patch into p and returns the result. p is not modified.
func (patch ProfilePatch) Apply(p UserProfile) UserProfile {
	out := p.Clone()
	if patch.Name != nil {
		out.Name = *patch.Name
	}
	if patch.Email != nil {
		out.Email = *patch.Email
	}
	if patch.Avatar != nil {
		out.Avatar = *patch.Avatar
	}
	if patch.Bio != nil {
		out.Bio = *patch.Bio
	}
	if patch.Experiences != nil {
		out.Experiences = append([]Experience{}, (*patch.Experiences)...)
	}
	if patch.Education != nil {
		out.Education = append([]Education{}, (*patch.Education)...)
	}
	if patch.Skills != nil {
		out.Skills = append([]Skill{}, (*patch.Skills)...)
	}
	return out
}

// Fields returns the document fields the patch sets, keyed by their
// firestore names, for a merge write.
func (patch ProfilePatch) Fields() map[string]interface{} {
	fields := make(map[string]interface{})
	if patch.Name != nil {
		fields["name"] = *patch.Name
	}
	if patch.Email != nil {
		fields["email"] = *patch.Email
	}
	if patch.Avatar != nil {
		fields["avatar"] = *patch.Avatar
	}
	if patch.Bio != nil {
		fields["bio"] = *patch.Bio
	}
	if patch.Experiences != nil {
		fields["experiences"] = *patch.Experiences
	}
	if patch.Education != nil {
		fields["education"] = *patch.Education
	}
	if patch.Skills != nil {
		fields["skills"] = *patch.Skills
	}
	return fields
}

// Empty reports whether the patch changes nothing.
func (patch ProfilePatch) Empty() bool {
	return len(patch.Fields()) == 0
}

// NewItemID derives a list-item id from the creation time. Uniqueness is only
// guaranteed within one client; two sessions adding at the same millisecond
// can collide.
func NewItemID(now time.Time) string {
	return strconv.FormatInt(now.UnixMilli(), 10)
}

// WithItemIDs returns a copy of the patch in which every experience,
// education and skill entry without an id gets one derived from now. Entries
// are spaced a millisecond apart so one patch never repeats an id.
func (patch ProfilePatch) WithItemIDs(now time.Time) ProfilePatch {
	next := func() string {
		id := NewItemID(now)
		now = now.Add(time.Millisecond)
		return id
	}
	if patch.Experiences != nil {
		items := append([]Experience{}, (*patch.Experiences)...)
		for i := range items {
			if items[i].ID == "" {
				items[i].ID = next()
			}
		}
		patch.Experiences = &items
	}
	if patch.Education != nil {
		items := append([]Education{}, (*patch.Education)...)
		for i := range items {
			if items[i].ID == "" {
				items[i].ID = next()
			}
		}
		patch.Education = &items
	}
	if patch.Skills != nil {
		items := append([]Skill{}, (*patch.Skills)...)
		for i := range items {
			if items[i].ID == "" {
				items[i].ID = next()
			}
		}
		patch.Skills = &items
	}
	return patch
}

// MaxBioLength bounds UserProfile.Bio in runes.
const MaxBioLength = 500

// ErrInvalidProfile wraps every profile validation failure.
var ErrInvalidProfile = errors.New("invalid profile")

// Validate checks the fields a patch would write.
func (patch ProfilePatch) Validate() error {
	if patch.Bio != nil && utf8.RuneCountInString(*patch.Bio) > MaxBioLength {
		return fmt.Errorf("%w: bio must be at most %d characters", ErrInvalidProfile, MaxBioLength)
	}
	if patch.Experiences != nil {
		for i, e := range *patch.Experiences {
			switch {
			case e.Company == "":
				return fmt.Errorf("%w: experience %d: company is required", ErrInvalidProfile, i)
			case e.Role == "":
				return fmt.Errorf("%w: experience %d: role is required", ErrInvalidProfile, i)
			case e.StartDate == "":
				return fmt.Errorf("%w: experience %d: start date is required", ErrInvalidProfile, i)
			}
		}
	}
	if patch.Skills != nil {
		for i, s := range *patch.Skills {
			if s.Name == "" {
				return fmt.Errorf("%w: skill %d: name is required", ErrInvalidProfile, i)
			}
			if !s.Level.Valid() {
				return fmt.Errorf("%w: skill %d: unknown level %q", ErrInvalidProfile, i, s.Level)
			}
		}
	}
	return nil
}
