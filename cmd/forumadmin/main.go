// Command forumadmin runs maintenance tasks against the forum database.
//
//	forumadmin moderator grant alice
//	forumadmin moderator revoke alice
//	forumadmin stats
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
