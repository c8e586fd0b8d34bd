// Package msgs defines the messages a link publishes to and accepts from
// a message bus.
//
// Every message is carried in a Typed envelope holding its type ID and
// its protobuf encoding.
package msgs
