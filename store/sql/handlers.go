package sqlstore

import (
	"strings"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

func catalogHandlers() repository.ModelHandlers[*catalogRecord] {
	return repository.ModelHandlers[*catalogRecord]{
		NewRecord: func() *catalogRecord {
			return &catalogRecord{}
		},
		GetID: func(record *catalogRecord) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return parseUUID(record.ID)
		},
		SetID: func(record *catalogRecord, id uuid.UUID) {
			if record == nil {
				return
			}
			record.ID = id.String()
		},
		GetIdentifier: func() string {
			return "owner"
		},
		GetIdentifierValue: func(record *catalogRecord) string {
			if record == nil {
				return ""
			}
			return strings.TrimSpace(record.Owner)
		},
	}
}

func itemTypeHandlers() repository.ModelHandlers[*itemTypeRecord] {
	return repository.ModelHandlers[*itemTypeRecord]{
		NewRecord: func() *itemTypeRecord {
			return &itemTypeRecord{}
		},
		GetID: func(record *itemTypeRecord) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return parseUUID(record.ID)
		},
		SetID: func(record *itemTypeRecord, id uuid.UUID) {
			if record == nil {
				return
			}
			record.ID = id.String()
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(record *itemTypeRecord) string {
			if record == nil {
				return ""
			}
			return strings.TrimSpace(record.ID)
		},
	}
}

func auditHandlers() repository.ModelHandlers[*auditRecord] {
	return repository.ModelHandlers[*auditRecord]{
		NewRecord: func() *auditRecord {
			return &auditRecord{}
		},
		GetID: func(record *auditRecord) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return parseUUID(record.ID)
		},
		SetID: func(record *auditRecord, id uuid.UUID) {
			if record == nil {
				return
			}
			record.ID = id.String()
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(record *auditRecord) string {
			if record == nil {
				return ""
			}
			return strings.TrimSpace(record.ID)
		},
	}
}

func parseUUID(value string) uuid.UUID {
	parsed, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return uuid.Nil
	}
	return parsed
}
