// Package domain contains the core types and store contracts of the
// confession board: posts, replies, votes, moderation verdicts, and the
// interfaces the engagement pipeline depends on. It has no dependencies on
// transport or storage implementations.
package domain
