package models

// ProjectStatus константы статусов проектов
const (
	ProjectStatusPendingContract  = "pending_contract"
	ProjectStatusAwaitingContract = "awaiting_contract"
	ProjectStatusAwaitingPayment  = "awaiting_payment"
	ProjectStatusInProgress       = "in_progress"
	ProjectStatusCompleted        = "completed"
)

// ProposalStatus константы статусов предложений
const (
	ProposalStatusPending  = "pending"
	ProposalStatusAccepted = "accepted"
	ProposalStatusRejected = "rejected"
)

// RequestStatus константы статусов заявок на услуги
const (
	RequestStatusOpen     = "open"
	RequestStatusAccepted = "accepted"
	RequestStatusClosed   = "closed"
)

// DisputeStatus константы статусов споров.
// Значения resuelta/irresoluble зафиксированы контрактом API и данными в базе.
const (
	DisputeStatusPending      = "pending"
	DisputeStatusResolved     = "resuelta"
	DisputeStatusUnresolvable = "irresoluble"
)

// PaymentStatus константы статусов оплаты проекта
const (
	PaymentStatusUnpaid = "unpaid"
	PaymentStatusPaid   = "paid"
)

// UserRole константы ролей пользователей
const (
	RoleClient     = "client"
	RoleFreelancer = "freelancer"
	RoleAdmin      = "admin"
)

// AuthorType типы авторов сообщений в беседе
const (
	AuthorTypeUser   = "user"
	AuthorTypeSystem = "system"
)

// DisputeMaxPerProject жёсткий лимит споров на проект за всё время его жизни.
const DisputeMaxPerProject = 5

// ValidProjectStatuses список валидных статусов проектов
var ValidProjectStatuses = map[string]struct{}{
	ProjectStatusPendingContract:  {},
	ProjectStatusAwaitingContract: {},
	ProjectStatusAwaitingPayment:  {},
	ProjectStatusInProgress:       {},
	ProjectStatusCompleted:        {},
}

// ValidProposalStatuses список валидных статусов предложений
var ValidProposalStatuses = map[string]struct{}{
	ProposalStatusPending:  {},
	ProposalStatusAccepted: {},
	ProposalStatusRejected: {},
}

// ValidDisputeStatuses список валидных статусов споров
var ValidDisputeStatuses = map[string]struct{}{
	DisputeStatusPending:      {},
	DisputeStatusResolved:     {},
	DisputeStatusUnresolvable: {},
}
