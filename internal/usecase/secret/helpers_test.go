package secret

import "github.com/LavaJover/pickup-settlement-service/internal/usecase/approval"

func issueWith(secret string) string {
	return approval.Issue(1001, "abc123", secret)
}
