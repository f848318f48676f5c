/*
Package session implements conversation ownership and persistence orchestration.

A Manager serializes work on each session (in process, and across replicas when
a DistributedLocker is configured), runs the conversation engine, persists the
result, and schedules the automatic reset that follows a completed booking.
*/
package session
