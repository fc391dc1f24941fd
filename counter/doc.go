// Package counter provides goVerify.FailedCounter implementations.
//
// An account is locked when its consecutive failure count reaches the
// configured threshold. The lock flag is always derived from the count on
// read; nothing stores it. With a positive Window the count expires that long
// after the first failure, otherwise only a reset (successful verification or
// manual unlock) clears it.
package counter
