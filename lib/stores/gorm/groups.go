package gorm

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/thewired-org/wired-relay/lib/types"
)

// CreateGroup creates the group, inserts the creator as a member and
// assigns them the admin role, all in one transaction. Every insert is
// idempotent on existing rows.
func (store *GormStore) CreateGroup(groupID, name, creatorPubkey string) error {
	tx := store.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	group := types.Group{GroupID: groupID, Name: name}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&group).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to create group: %w", err)
	}

	member := types.GroupMember{GroupID: groupID, Pubkey: creatorPubkey}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&member).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to add group creator: %w", err)
	}

	role := types.GroupRole{GroupID: groupID, Pubkey: creatorPubkey, Role: types.RoleAdmin}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&role).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to assign creator role: %w", err)
	}

	return tx.Commit().Error
}

// DeleteGroup removes the group and cascades member and role removal.
func (store *GormStore) DeleteGroup(groupID string) error {
	tx := store.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Delete(&types.GroupRole{}, "group_id = ?", groupID).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to delete group roles: %w", err)
	}
	if err := tx.Delete(&types.GroupMember{}, "group_id = ?", groupID).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to delete group members: %w", err)
	}
	if err := tx.Delete(&types.Group{}, "group_id = ?", groupID).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to delete group: %w", err)
	}

	return tx.Commit().Error
}

// GetGroup returns the group, or nil when it does not exist.
func (store *GormStore) GetGroup(groupID string) (*types.Group, error) {
	var group types.Group
	err := store.DB.First(&group, "group_id = ?", groupID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query group: %w", err)
	}

	return &group, nil
}

func (store *GormStore) IsGroupAdmin(groupID, pubkey string) (bool, error) {
	var count int64
	err := store.DB.Model(&types.GroupRole{}).
		Where("group_id = ? AND pubkey = ? AND role = ?", groupID, pubkey, types.RoleAdmin).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to query group roles: %w", err)
	}

	return count > 0, nil
}

func (store *GormStore) IsGroupMember(groupID, pubkey string) (bool, error) {
	var count int64
	err := store.DB.Model(&types.GroupMember{}).
		Where("group_id = ? AND pubkey = ?", groupID, pubkey).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to query group members: %w", err)
	}

	return count > 0, nil
}

func (store *GormStore) AddGroupMember(groupID, pubkey string) error {
	member := types.GroupMember{GroupID: groupID, Pubkey: pubkey}
	err := store.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&member).Error
	if err != nil {
		return fmt.Errorf("failed to add group member: %w", err)
	}

	return nil
}

// RemoveGroupMember removes the membership row and any roles the pubkey
// held in the group.
func (store *GormStore) RemoveGroupMember(groupID, pubkey string) error {
	tx := store.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Delete(&types.GroupMember{}, "group_id = ? AND pubkey = ?", groupID, pubkey).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to remove group member: %w", err)
	}
	if err := tx.Delete(&types.GroupRole{}, "group_id = ? AND pubkey = ?", groupID, pubkey).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to remove group roles: %w", err)
	}

	return tx.Commit().Error
}

func (store *GormStore) GetGroupMembers(groupID string) ([]string, error) {
	var pubkeys []string
	err := store.DB.Model(&types.GroupMember{}).
		Where("group_id = ?", groupID).
		Order("pubkey").
		Pluck("pubkey", &pubkeys).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list group members: %w", err)
	}

	return pubkeys, nil
}

func (store *GormStore) GetGroupAdmins(groupID string) ([]string, error) {
	var pubkeys []string
	err := store.DB.Model(&types.GroupRole{}).
		Where("group_id = ? AND role = ?", groupID, types.RoleAdmin).
		Order("pubkey").
		Pluck("pubkey", &pubkeys).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list group admins: %w", err)
	}

	return pubkeys, nil
}
