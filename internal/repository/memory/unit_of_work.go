package memory

import (
	"context"

	"cortex-ai-be/internal/repository/contract"
)

// unitOfWork applies writes immediately; Commit and Rollback only close the unit.
type unitOfWork struct {
	store *Store
}

func (u *unitOfWork) Begin(ctx context.Context) error { return nil }

func (u *unitOfWork) Commit() error { return nil }

func (u *unitOfWork) Rollback() error { return nil }

func (u *unitOfWork) ConversationRepository() contract.ConversationRepository {
	return &conversationRepository{store: u.store}
}

func (u *unitOfWork) MessageRepository() contract.MessageRepository {
	return &messageRepository{store: u.store}
}

func (u *unitOfWork) ContextReferenceRepository() contract.ContextReferenceRepository {
	return &contextReferenceRepository{store: u.store}
}

func (u *unitOfWork) NoteRepository() contract.NoteRepository {
	return &noteRepository{store: u.store}
}

func (u *unitOfWork) FolderRepository() contract.FolderRepository {
	return &folderRepository{store: u.store}
}

func (u *unitOfWork) FileRepository() contract.FileRepository {
	return &fileRepository{store: u.store}
}
