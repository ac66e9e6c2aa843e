// Package entities contains domain entities
package entities

import (
	"strings"
	"time"
)

// ReleaseType is the closed set of broadcast categories
type ReleaseType string

const (
	ReleaseTypeFull     ReleaseType = "FULL_RELEASE"
	ReleaseTypeFragment ReleaseType = "FRAGMENT_RELEASE"
	ReleaseTypeFestival ReleaseType = "FESTIVAL_RELEASE"
)

var releaseTypeLabels = map[ReleaseType]string{
	ReleaseTypeFull:     "Полный выпуск",
	ReleaseTypeFragment: "Фрагмент",
	ReleaseTypeFestival: "Праздник",
}

// Label returns the human readable name used on the source site
func (t ReleaseType) Label() string {
	return releaseTypeLabels[t]
}

// ParseReleaseType maps a site label to a ReleaseType, case-insensitively
func ParseReleaseType(label string) (ReleaseType, bool) {
	label = strings.TrimSpace(label)
	for t, l := range releaseTypeLabels {
		if strings.EqualFold(l, label) {
			return t, true
		}
	}
	return "", false
}

// Broadcast is one audio release of the show
type Broadcast struct {
	ID                int64       `gorm:"primaryKey;autoIncrement"`
	RoleName          string      `gorm:"size:128;not null"`
	ReleaseDate       *time.Time  `gorm:"type:date"`
	ReleaseType       ReleaseType `gorm:"size:32;not null;default:FULL_RELEASE"`
	Comment           *string     `gorm:"size:128"`
	Filename          *string     `gorm:"size:128"`
	SourceURL         *string     `gorm:"size:512;uniqueIndex"`
	TelegramFileID    *string     `gorm:"column:telegram_file_id;size:128"`
	TelegramFileIDAlt *string     `gorm:"column:telegram_file_id_alt;size:128"`
	CreatedAt         time.Time
}

// TableName overrides gorm table name
func (Broadcast) TableName() string {
	return "broadcasts"
}

// FileName returns the local filename or empty string
func (b *Broadcast) FileName() string {
	return deref(b.Filename)
}

// Handle returns the asset handle stored in the given slot or empty string
func (b *Broadcast) Handle(slot HandleSlot) string {
	if slot == SlotAlternate {
		return deref(b.TelegramFileIDAlt)
	}
	return deref(b.TelegramFileID)
}

// HandleSlot names one of the two persisted asset handle fields
type HandleSlot string

const (
	SlotPrimary   HandleSlot = "telegram_file_id"
	SlotAlternate HandleSlot = "telegram_file_id_alt"
)

// SlotFor selects the slot for a user's variant preference
func SlotFor(alternate bool) HandleSlot {
	if alternate {
		return SlotAlternate
	}
	return SlotPrimary
}

// BroadcastUpdate is an explicit set of changed broadcast fields
type BroadcastUpdate struct {
	TelegramFileID    *string
	TelegramFileIDAlt *string
	Filename          *string
	Comment           *string
}

// HandleUpdate builds an update that touches a single handle slot
func HandleUpdate(slot HandleSlot, handle string) BroadcastUpdate {
	h := handle
	if slot == SlotAlternate {
		return BroadcastUpdate{TelegramFileIDAlt: &h}
	}
	return BroadcastUpdate{TelegramFileID: &h}
}

// Columns returns column/value pairs of the fields being changed
func (u BroadcastUpdate) Columns() map[string]interface{} {
	columns := make(map[string]interface{}, 4)
	if u.TelegramFileID != nil {
		columns["telegram_file_id"] = *u.TelegramFileID
	}
	if u.TelegramFileIDAlt != nil {
		columns["telegram_file_id_alt"] = *u.TelegramFileIDAlt
	}
	if u.Filename != nil {
		columns["filename"] = *u.Filename
	}
	if u.Comment != nil {
		columns["comment"] = *u.Comment
	}
	return columns
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
