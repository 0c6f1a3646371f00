// Package secret carries credentials through the program without leaking them.
//
// Value redacts itself under every fmt verb, JSON and text marshaling, and
// only hands out the raw credential through Expose. Source and Resolver
// locate a token in the environment or in a file.
package secret
