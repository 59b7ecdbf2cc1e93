// Command qftpuser manages the JSON user file a qftpd server authenticates
// against: the only way to populate it, since the server itself never
// writes new accounts.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/alecthomas/kingpin/v2"

	"github.com/onestay/qftp/internal/auth"
)

var (
	app = kingpin.New("qftpuser", "manage a QFTP server's user file")

	authFile = app.Flag("auth-file", "path to the JSON user file").Required().String()

	addCmd      = app.Command("add", "add a new user")
	addName     = addCmd.Arg("name", "login name").Required().String()
	addPassword = addCmd.Arg("password", "login password").Required().String()
	addUID      = addCmd.Flag("uid", "unix uid associated with this user").Required().Uint32()
	addGIDs     = addCmd.Flag("gid", "unix gid granted to this user (repeatable)").Strings()

	listCmd = app.Command("list", "list existing users")
)

func main() {
	cmd := kingpin.MustParse(app.Parse(os.Args[1:]))

	storage, err := auth.NewFileStorage(*authFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "qftpuser: opening user file:", err)
		os.Exit(1)
	}
	authority := auth.NewAuthority(storage)

	switch cmd {
	case addCmd.FullCommand():
		err = runAdd(authority, *addName, *addPassword, *addUID, *addGIDs)
	case listCmd.FullCommand():
		err = runList(storage)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "qftpuser:", err)
		os.Exit(1)
	}
}

func runAdd(authority *auth.Authority, name, password string, uid uint32, rawGIDs []string) error {
	gids := make([]uint32, len(rawGIDs))
	for i, raw := range rawGIDs {
		v, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return fmt.Errorf("parsing gid %q: %w", raw, err)
		}
		gids[i] = uint32(v)
	}

	if err := authority.AddUser(name, password, uid, gids); err != nil {
		return fmt.Errorf("adding user: %w", err)
	}
	fmt.Printf("added user %q\n", name)
	return nil
}

func runList(storage *auth.FileStorage) error {
	users, err := storage.Users()
	if err != nil {
		return fmt.Errorf("reading users: %w", err)
	}
	for _, u := range users {
		fmt.Printf("%s\tuid=%d\tgids=%v\n", u.Name, u.UID, u.GIDs)
	}
	return nil
}
