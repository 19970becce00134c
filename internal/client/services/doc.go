// Package services contains the application services of the mindvault
// client: the journal service that writes, reads and migrates entries
// through the encryption layer, and the PIN service that changes the PIN
// and re-encrypts private entries in one transaction.
package services
