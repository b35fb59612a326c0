package domain

import "strings"

// DisposableDomains lists throwaway mail providers rejected by the form.
var DisposableDomains = []string{
	"guerrillamail.com",
	"temp-mail.org",
	"throwaway.email",
	"10minutemail.com",
	"mailinator.com",
	"tempmail.com",
	"yopmail.com",
	"maildrop.cc",
	"trashmail.com",
	"sharklasers.com",
}

var disposableDomainSet = makeStringSet(DisposableDomains)

// IsDisposableEmail matches the part after the first '@' against the denylist,
// ignoring case.
func IsDisposableEmail(email string) bool {
	parts := strings.Split(email, "@")
	if len(parts) < 2 {
		return false
	}
	_, ok := disposableDomainSet[strings.ToLower(parts[1])]
	return ok
}

func makeStringSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		item = strings.ToLower(strings.TrimSpace(item))
		if item == "" {
			continue
		}
		set[item] = struct{}{}
	}
	return set
}
