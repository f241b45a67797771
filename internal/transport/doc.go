// Package transport wraps the messaging platform the bot lives on.
//
// The Client interface is the only surface the queue core touches: send a
// reply, edit a message, resolve a file reference to a path and size, and
// open a byte stream for a resolved path. The Telegram implementation sits
// on go-telegram-bot-api; tests substitute stubs.
//
// Inbound updates are converted to the platform-neutral Message type before
// they reach the permissions gate and the ingress handler, so classification
// logic never depends on Telegram types.
package transport
