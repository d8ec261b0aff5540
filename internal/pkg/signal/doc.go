// Package signal provides typed observer lists with explicit connection
// handles, used to fan out backend events to the object registry.
package signal
