package natsadapter

import (
	"fmt"
	"strings"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Feed channels a client may subscribe to.
const (
	FeedLikes    = "likes"
	FeedComments = "comments"
)

// EncodeFeed serialises a feed event as a protobuf Struct tagged with its
// channel.
func EncodeFeed(channel string, fields map[string]any) ([]byte, error) {
	all := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		all[k] = v
	}
	all["type"] = channel

	st, err := structpb.NewStruct(all)
	if err != nil {
		return nil, fmt.Errorf("feed %s: %w", channel, err)
	}
	return proto.Marshal(st)
}

// DecodeFeed parses a feed event.
func DecodeFeed(data []byte) (*structpb.Struct, error) {
	var st structpb.Struct
	if err := proto.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}
	return &st, nil
}

// FeedJSON converts a protobuf feed event to JSON for browser clients.
func FeedJSON(data []byte) ([]byte, error) {
	st, err := DecodeFeed(data)
	if err != nil {
		return nil, err
	}
	return protojson.MarshalOptions{UseProtoNames: true}.Marshal(st)
}

// FeedSubject returns the wildcard subject for a channel, or "" when the
// channel is unknown.
func FeedSubject(channel string) string {
	switch channel {
	case FeedLikes:
		return SubjectFeedLikes + ">"
	case FeedComments:
		return SubjectFeedComment + ">"
	}
	return ""
}

// Token makes id safe to use as a single subject token.
func Token(id string) string {
	if id == "" {
		return "_"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ', '\t', '\r', '\n':
			return '_'
		}
		return r
	}, id)
}
