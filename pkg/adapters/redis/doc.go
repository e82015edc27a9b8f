// Package redis provides a Redis-backed workflow store and a distributed locker
// used to serialize workflow activation across replicas.
package redis
