package util

import (
	"fmt"
	"os"
	"os/user"
	"time"

	"github.com/rs/xid"
)

// GenID generates an ID string.
// IDs are globally unique and sortable by creation time.
func GenID() string {
	id := xid.New()
	return id.String()
}

// TimestampID returns an identifier of the form <login>_YYYY_MMDD_HHMMSS.
// Two identifiers created by the same user within the same second collide.
func TimestampID(login string, now time.Time) string {
	return fmt.Sprintf("%s_%02d_%02d%02d_%02d%02d%02d",
		login, now.Year(), int(now.Month()), now.Day(),
		now.Hour(), now.Minute(), now.Second())
}

// CurrentUserName returns the login name of the effective user.
func CurrentUserName() (string, error) {
	u, err := user.LookupId(fmt.Sprint(os.Geteuid()))
	if err != nil {
		u, err = user.Current()
		if err != nil {
			return "", fmt.Errorf("looking up current user: %w", err)
		}
	}
	return u.Username, nil
}
