package dashboard

type AdminStats struct {
	PendingPayments      int64            `json:"pendingPayments"`
	PendingPaymentAmount int64            `json:"pendingPaymentAmount"`
	CompletedCollections int64            `json:"completedCollections"`
	RejectedCollections  int64            `json:"rejectedCollections"`
	TotalPaidOut         int64            `json:"totalPaidOut"`
	TotalTokensAwarded   int64            `json:"totalTokensAwarded"`
	FailedPayouts        int64            `json:"failedPayouts"`
	OrdersByStatus       map[string]int64 `json:"ordersByStatus"`
}

type CollectorStats struct {
	AssignedJobs      int64 `json:"assignedJobs"`
	AwaitingApproval  int64 `json:"awaitingApproval"`
	ProjectedEarnings int64 `json:"projectedEarnings"`
	PaidEarnings      int64 `json:"paidEarnings"`
}

type UserStats struct {
	WalletBalance      int64            `json:"walletBalance"`
	Submissions        int64            `json:"submissions"`
	SubmissionByStatus map[string]int64 `json:"submissionsByStatus"`
	Orders             int64            `json:"orders"`
}

type PaymentTotals struct {
	PaidOut       int64
	TokensAwarded int64
	Failed        int64
}
