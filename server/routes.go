package server

func (s *Server) initRoutes() {
	// Unauthenticated
	s.RegisterRouteHandler("GET "+RouteHealth, ChainMiddleware(s.HealthHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAuthRegister, ChainMiddleware(s.RegisterHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAuthLogin, ChainMiddleware(s.LoginHandler(), s.APIMiddleware()...))

	// User profile
	s.RegisterRouteHandler("GET "+RouteUserProfile, ChainMiddleware(s.ProfileHandler(), s.AuthedAPIMiddleware()...))
	s.RegisterRouteHandler("PUT "+RouteUserProfile, ChainMiddleware(s.UpdateProfileHandler(), s.AuthedAPIMiddleware()...))
	s.RegisterRouteHandler("PUT "+RouteUserPassword, ChainMiddleware(s.ChangePasswordHandler(), s.AuthedAPIMiddleware()...))

	// Chat
	s.RegisterRouteHandler("POST "+RouteChatSend, ChainMiddleware(s.SendMessageHandler(), s.AuthedAPIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteChatConversations, ChainMiddleware(s.ListConversationsHandler(), s.AuthedAPIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteChatConversation, ChainMiddleware(s.GetConversationHandler(), s.AuthedAPIMiddleware()...))
	s.RegisterRouteHandler("DELETE "+RouteChatConversation, ChainMiddleware(s.DeleteConversationHandler(), s.AuthedAPIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteExportConversation, ChainMiddleware(s.ExportConversationHandler(), s.AuthedAPIMiddleware()...))

	// Knowledge base
	s.RegisterRouteHandler("POST "+RouteFilesUpload, ChainMiddleware(s.UploadFileHandler(), s.AuthedAPIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteFilesKnowledgeBase, ChainMiddleware(s.KnowledgeBaseHandler(), s.AuthedAPIMiddleware()...))
	s.RegisterRouteHandler("DELETE "+RouteFilesDocument, ChainMiddleware(s.DeleteDocumentHandler(), s.AuthedAPIMiddleware()...))

	// Plugins
	s.RegisterRouteHandler("GET "+RoutePlugins, ChainMiddleware(s.ListPluginsHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RoutePluginExecute, ChainMiddleware(s.ExecutePluginHandler(), s.AuthedAPIMiddleware()...))
}
