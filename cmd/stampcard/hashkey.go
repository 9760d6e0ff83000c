package main

import (
	"fmt"
	"io"

	"github.com/polkiloo/stampcard/internal/pkg/auth"
)

const hashKeyCommand = "hash-key"

// hashKey prints the bcrypt hash to use as OPERATOR_KEY_HASH.
func hashKey(args []string, stdout, stderr io.Writer) int {
	if len(args) != 1 || args[0] == "" {
		fmt.Fprintf(stderr, "usage: stampcard %s <operator-key>\n", hashKeyCommand)
		return 2
	}
	hash, err := auth.NewBcryptHasher(0).Hash(args[0])
	if err != nil {
		fmt.Fprintf(stderr, "failed to hash key: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, hash)
	return 0
}
