// SPDX-License-Identifier: EPL-2.0

// Package tags stores the vendor comments of an Ogg logical stream.
//
// Comments arrive as "KEY=VALUE" strings. Field names are case-insensitive
// and a field may appear more than once:
//
//	t := tags.New("Xiph.Org libVorbis I 20200704", []string{
//	    "GENRE=Rock",
//	    "genre=Jazz",
//	    "TITLE[fr]=Bonjour",
//	})
//
//	t.Multi("Genre")  // ["Rock", "Jazz"]
//	t.Single("GENRE") // "Jazz" (last value wins)
//	t.Joined("genre") // "Rock\nJazz"
//	t.Title()         // "FR: Bonjour"
//
// Single returns the last value of a repeated field while Multi keeps every
// value in the order it was written.
package tags
