// Package ingress turns inbound chat messages into queued transfer jobs.
//
// Classification recognizes document, photo, video, and animation
// attachments plus the "/url" command form (argument or replied-to text).
// Anything else is silently ignored. For a recognized job the handler
// replies with the queue position the job will occupy, enqueues it, and
// wakes the transfer worker. Only the initial reply failing is escalated:
// without that message handle no later status edit is addressable.
package ingress
