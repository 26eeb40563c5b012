// Package identity manages creation, persistence and publication of the
// local identity keypair.
//
// Keypairs are created lazily on first use per user id and cached for the
// session, so repeated calls never generate duplicates. If the durable
// store is unavailable or corrupted the service regenerates in memory and
// continues in a degraded, non-persistent mode instead of failing the
// calling flow.
package identity
