package repository

import (
	"taskilo/database"
	companyRepo "taskilo/database/repository/company"
	notificationRepo "taskilo/database/repository/notification"
	quoteRepo "taskilo/database/repository/quote"
	transferRepo "taskilo/database/repository/transfer"
	userRepo "taskilo/database/repository/user"
)

// Re-export the repository interfaces and constructors.
type QuoteRepository = quoteRepo.QuoteRepository

var NewQuoteRepo = quoteRepo.NewQuoteRepo

type TransferRepository = transferRepo.TransferRepository

var NewTransferRepo = transferRepo.NewTransferRepo

type CompanyRepository = companyRepo.CompanyRepository

var NewCompanyRepo = companyRepo.NewCompanyRepo

type UserRepository = userRepo.UserRepository

var NewUserRepo = userRepo.NewUserRepo

type NotificationRepository = notificationRepo.NotificationRepository

var NewNotificationRepo = notificationRepo.NewNotificationRepo

// Set bundles every repository over one store.
type Set struct {
	Store         database.Store
	Quotes        QuoteRepository
	Transfers     TransferRepository
	Companies     CompanyRepository
	Users         UserRepository
	Notifications NotificationRepository
}

// NewSet builds all repositories on store.
func NewSet(store database.Store) *Set {
	return &Set{
		Store:         store,
		Quotes:        NewQuoteRepo(store),
		Transfers:     NewTransferRepo(store),
		Companies:     NewCompanyRepo(store),
		Users:         NewUserRepo(store),
		Notifications: NewNotificationRepo(store),
	}
}
