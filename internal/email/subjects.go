package email

const (
	subjectQuoteProposalFmt       = "Your CircleTel business quote %s"
	subjectQuoteAcceptedFmt       = "Thank you for accepting quote %s"
	subjectQuoteAcceptedNoticeFmt = "Quote %s accepted by %s"
)
