// Package youtube recognizes YouTube links embedded in posts.
//
// This package enables redditview to:
// - Extract video ids from watch, short-link, shorts and embed URLs
// - Build canonical embed, watch and thumbnail URLs for a video id
package youtube
