// Command hashpassword reads a password from the terminal and prints its
// encoded hash, suitable for seeding the users table by hand.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/todoapi/internal/server/auth"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("hashpassword", flag.ContinueOnError)
	fs.SetOutput(stderr)
	alg := fs.String("alg", auth.AlgorithmArgon2id, "hash algorithm: argon2id or bcrypt")
	if err := fs.Parse(args); err != nil {
		return err
	}

	hasher, err := auth.NewPasswordHasher(*alg)
	if err != nil {
		return err
	}

	fmt.Fprint(stderr, "Enter password: ")
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(stderr)
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	defer clear(pw)

	if len(pw) == 0 {
		return errors.New("empty password")
	}

	encoded, err := hasher.Hash(string(pw))
	if err != nil {
		return err
	}
	if !hasher.Verify(encoded, string(pw)) {
		return errors.New("hash verification failed")
	}

	fmt.Fprintln(stdout, encoded)
	return nil
}
