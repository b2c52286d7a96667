package types

// EventRecord is the persisted form of a Nostr event. The id is the
// primary key, so duplicate inserts are discarded at the database level.
// DTag and HTag denormalize the first "d"/"h" tag value for indexed
// filter queries; Tags keeps the full ordered tag list as JSON.
type EventRecord struct {
	ID        string `gorm:"primaryKey;size:64"`
	Pubkey    string `gorm:"size:64;index"`
	CreatedAt int64  `gorm:"index"`
	Kind      int    `gorm:"index"`
	Tags      string `gorm:"type:jsonb"`
	Content   string
	Sig       string  `gorm:"size:128"`
	DTag      *string `gorm:"column:d_tag;index"`
	HTag      *string `gorm:"column:h_tag;index"`
}

func (EventRecord) TableName() string {
	return "events"
}

// Group is a NIP-29 group addressed by the h tag value.
type Group struct {
	GroupID   string `gorm:"primaryKey;size:255"`
	Name      string
	Picture   *string
	About     *string
	IsPrivate bool `gorm:"default:false"`
	IsClosed  bool `gorm:"default:false"`
}

func (Group) TableName() string {
	return "groups"
}

type GroupMember struct {
	GroupID string `gorm:"primaryKey;size:255"`
	Pubkey  string `gorm:"primaryKey;size:64"`
}

func (GroupMember) TableName() string {
	return "group_members"
}

type GroupRole struct {
	GroupID string `gorm:"primaryKey;size:255"`
	Pubkey  string `gorm:"primaryKey;size:64"`
	Role    string `gorm:"primaryKey;size:32"`
}

func (GroupRole) TableName() string {
	return "group_roles"
}

// RoleAdmin is the only role the relay currently acts on.
const RoleAdmin = "admin"

// RelayInfo is the NIP-11 relay information document.
type RelayInfo struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	Pubkey        string `json:"pubkey"`
	Contact       string `json:"contact,omitempty"`
	SupportedNIPs []int  `json:"supported_nips"`
	Software      string `json:"software"`
	Version       string `json:"version"`
}
