package constant

const (
	ChatMessageRoleUser      = "user"
	ChatMessageRoleAssistant = "assistant"
	ChatMessageRoleSystem    = "system"
)

const (
	DefaultConversationTitle = "New chat"
	TitlePrefixLength        = 60

	ListConversationsDefaultLimit = 3
	ListConversationsMaxLimit     = 10

	SuggestionLimitPerType  = 8
	SuggestionSubtitleRunes = 120
	FallbackNoteCount       = 5
)

const (
	NoteSubtitleUnavailable = "Note content unavailable"
	FolderSubtitle          = "Folder"
)

// Prompt sections.
const (
	PromptPreamble = "You are Cortex AI, a helpful assistant for knowledge workspaces.\n" +
		"You must rely on the provided CONTEXT. If the answer cannot be found, ask clarifying questions or state that it is not available."

	PromptNoContext = "No explicit context provided. Use available knowledge."
	PromptNoHistory = "No previous conversation."
)

const (
	ConversationEventsTopic  = "CONVERSATION_EVENTS"
	ConversationRelayDurable = "conversation-relay"
)
