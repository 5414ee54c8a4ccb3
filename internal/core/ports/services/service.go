package services

// ServiceContainer holds instances of all the application services. It is the
// main entry point for accessing service functionality from the handlers.
type ServiceContainer struct {
	User               UserSvcFacade
	Expense            ExpenseSvcFacade
	Token              TokenSvcFacade
	GoogleOAuthHandler GoogleOAuthSvcFacade
}
