package mainindex

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/avolkov/drivedb/internal/common"
	"github.com/avolkov/drivedb/internal/models"
)

// Filter is the shared filter-field set of every query engine. Every field
// is optional except FileSystemType and RequiredSecurityGroup, which the
// caller must supply. Nil or empty "any of"/"all of" lists mean "no
// restriction on this field", never "match nothing".
type Filter struct {
	// Required. Queries address exactly one file-system namespace.
	FileSystemType *models.FileSystemType

	// Required. Inclusive range of security-group tiers.
	RequiredSecurityGroup *models.IntRange

	// A row matches if it has no ACL rows at all, or at least one of its
	// ACL members is in this list.
	ACLAnyOf []uuid.UUID

	FileTypeAnyOf       []int32
	DataTypeAnyOf       []int32
	FileStateAnyOf      []models.FileState
	ArchivalStatusAnyOf []models.ArchivalStatus
	SenderAnyOf         [][]byte
	GroupIDAnyOf        []uuid.UUID

	GlobalTransitIDAnyOf []uuid.UUID
	UniqueIDAnyOf        []uuid.UUID

	TagsAnyOf []uuid.UUID
	TagsAllOf []uuid.UUID

	UserDateSpan *models.TimeRange
}

func (f *Filter) validate() error {
	if f.FileSystemType == nil {
		return fmt.Errorf("%w: file system type is required", common.ErrInvalidArgument)
	}
	if f.RequiredSecurityGroup == nil {
		return fmt.Errorf("%w: required security group range is required", common.ErrInvalidArgument)
	}
	if !f.RequiredSecurityGroup.Valid() {
		return fmt.Errorf("%w: security group range start %d > end %d",
			common.ErrInvalidArgument, f.RequiredSecurityGroup.Start, f.RequiredSecurityGroup.End)
	}
	if f.UserDateSpan != nil && !f.UserDateSpan.Valid() {
		return fmt.Errorf("%w: user date span start %d > end %d",
			common.ErrInvalidArgument, f.UserDateSpan.Start, f.UserDateSpan.End)
	}
	return nil
}

// predicate is the structured output of the builder: an optional join, a
// conjunction of bound-parameter conditions, and their arguments in order.
// Identifier bytes are always bound, never rendered as literal text.
type predicate struct {
	join     string
	conds    []string
	args     []any
	distinct bool
}

func (p *predicate) add(cond string, args ...any) {
	p.conds = append(p.conds, cond)
	p.args = append(p.args, args...)
}

func (p *predicate) where() string {
	return strings.Join(p.conds, " AND ")
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n-1)+"?", " ")
}

func idList(ids []uuid.UUID) []any {
	out := make([]any, len(ids))
	for i := range ids {
		out[i] = idArg(ids[i])
	}
	return out
}

// buildPredicate translates scope and filter into the boolean predicate of
// §drive queries: the logical AND of the scope pin, the required namespace
// and security-group restrictions, and every populated optional filter.
func buildPredicate(scope models.DriveScope, f Filter) (*predicate, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}

	p := &predicate{}
	p.add(`m.identity_id = ?`, idArg(scope.IdentityID))
	p.add(`m.drive_id = ?`, idArg(scope.DriveID))
	p.add(`m.file_system_type = ?`, *f.FileSystemType)
	p.add(`m.required_security_group >= ? AND m.required_security_group <= ?`,
		f.RequiredSecurityGroup.Start, f.RequiredSecurityGroup.End)

	if len(f.ACLAnyOf) > 0 {
		// Files without ACL rows are unrestricted and always match; files
		// with ACL rows match when at least one member is in the list. The
		// left join multiplies matching rows, hence DISTINCT.
		p.join = ` LEFT JOIN drive_acl_index AS a
			ON a.identity_id = m.identity_id AND a.drive_id = m.drive_id AND a.file_id = m.file_id`
		p.distinct = true
		p.add(`(a.acl_member_id IS NULL OR a.acl_member_id IN (`+placeholders(len(f.ACLAnyOf))+`))`,
			idList(f.ACLAnyOf)...)
	}

	addInt32In := func(col string, vals []int32) {
		if len(vals) == 0 {
			return
		}
		args := make([]any, len(vals))
		for i, v := range vals {
			args[i] = v
		}
		p.add(col+` IN (`+placeholders(len(vals))+`)`, args...)
	}
	addInt32In(`m.file_type`, f.FileTypeAnyOf)
	addInt32In(`m.data_type`, f.DataTypeAnyOf)

	if len(f.FileStateAnyOf) > 0 {
		args := make([]any, len(f.FileStateAnyOf))
		for i, v := range f.FileStateAnyOf {
			args[i] = v
		}
		p.add(`m.file_state IN (`+placeholders(len(f.FileStateAnyOf))+`)`, args...)
	}
	if len(f.ArchivalStatusAnyOf) > 0 {
		args := make([]any, len(f.ArchivalStatusAnyOf))
		for i, v := range f.ArchivalStatusAnyOf {
			args[i] = v
		}
		p.add(`m.archival_status IN (`+placeholders(len(f.ArchivalStatusAnyOf))+`)`, args...)
	}
	if len(f.SenderAnyOf) > 0 {
		args := make([]any, len(f.SenderAnyOf))
		for i, v := range f.SenderAnyOf {
			args[i] = v
		}
		p.add(`m.sender_id IN (`+placeholders(len(f.SenderAnyOf))+`)`, args...)
	}
	if len(f.GroupIDAnyOf) > 0 {
		p.add(`m.group_id IN (`+placeholders(len(f.GroupIDAnyOf))+`)`, idList(f.GroupIDAnyOf)...)
	}
	if len(f.GlobalTransitIDAnyOf) > 0 {
		p.add(`m.global_transit_id IN (`+placeholders(len(f.GlobalTransitIDAnyOf))+`)`,
			idList(f.GlobalTransitIDAnyOf)...)
	}
	if len(f.UniqueIDAnyOf) > 0 {
		p.add(`m.unique_id IN (`+placeholders(len(f.UniqueIDAnyOf))+`)`, idList(f.UniqueIDAnyOf)...)
	}

	if len(f.TagsAnyOf) > 0 {
		args := append([]any{idArg(scope.IdentityID), idArg(scope.DriveID)}, idList(f.TagsAnyOf)...)
		p.add(`m.file_id IN (SELECT file_id FROM drive_tag_index
			WHERE identity_id = ? AND drive_id = ? AND tag_id IN (`+placeholders(len(f.TagsAnyOf))+`))`,
			args...)
	}
	if len(f.TagsAllOf) > 0 {
		// Intersection chain: one membership subquery per tag, folded into
		// the same flat AND list as every other condition.
		for _, tag := range f.TagsAllOf {
			p.add(`m.file_id IN (SELECT file_id FROM drive_tag_index
				WHERE identity_id = ? AND drive_id = ? AND tag_id = ?)`,
				idArg(scope.IdentityID), idArg(scope.DriveID), idArg(tag))
		}
	}

	if f.UserDateSpan != nil {
		p.add(`m.user_date >= ? AND m.user_date <= ?`, f.UserDateSpan.Start, f.UserDateSpan.End)
	}

	return p, nil
}
