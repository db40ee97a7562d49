package unitofwork

import (
	"context"

	"cortex-ai-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ConversationRepository() contract.ConversationRepository
	MessageRepository() contract.MessageRepository
	ContextReferenceRepository() contract.ContextReferenceRepository

	NoteRepository() contract.NoteRepository
	FolderRepository() contract.FolderRepository
	FileRepository() contract.FileRepository
}
