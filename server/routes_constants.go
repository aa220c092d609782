package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Auth
	RouteAuthRegister = "/auth/register"
	RouteAuthLogin    = "/auth/login"

	// User profile
	RouteUserProfile  = "/users/profile"
	RouteUserPassword = "/users/password"

	// Chat
	RouteChatSend           = "/chat/send"
	RouteChatConversations  = "/chat/conversations"
	RouteChatConversation   = "/chat/conversations/{id}"
	RouteExportConversation = "/export/conversation/{id}"

	// Knowledge base
	RouteFilesUpload        = "/files/upload"
	RouteFilesKnowledgeBase = "/files/knowledge-base"
	RouteFilesDocument      = "/files/{id}"

	// Plugins
	RoutePlugins       = "/plugins"
	RoutePluginExecute = "/plugins/{name}/execute"

	// Service
	RouteHealth = "/health"
)
