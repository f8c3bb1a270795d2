// Package contracts holds recorded Reddit API payloads shared by the client,
// classifier and CLI tests. The payloads keep upstream field names and
// escaping so tests exercise the real wire shape.
package contracts

// ListingContract is a first page of r/pics/hot with one post of each media
// kind plus a text post. Its cursor points at a second page.
const ListingContract = `{
  "kind": "Listing",
  "data": {
    "after": "t3_p6",
    "dist": 6,
    "modhash": "",
    "geo_filter": null,
    "children": [
      {
        "kind": "t3",
        "data": {
          "id": "p1",
          "name": "t3_p1",
          "title": "Sunset over the bay",
          "author": "photographer",
          "subreddit": "pics",
          "created_utc": 1714564800.0,
          "score": 1520,
          "num_comments": 48,
          "permalink": "/r/pics/comments/p1/sunset_over_the_bay/",
          "url": "https://i.redd.it/sunset.jpg",
          "domain": "i.redd.it",
          "post_hint": "image",
          "is_video": false,
          "over_18": false,
          "preview": {
            "images": [
              {"source": {"url": "https://preview.redd.it/sunset.jpg?width=1080&amp;s=abc", "width": 1080, "height": 720}, "resolutions": []}
            ],
            "enabled": true
          }
        }
      },
      {
        "kind": "t3",
        "data": {
          "id": "p2",
          "name": "t3_p2",
          "title": "Trip album",
          "author": "traveller",
          "subreddit": "pics",
          "created_utc": 1714561200.0,
          "score": 860,
          "num_comments": 12,
          "permalink": "/r/pics/comments/p2/trip_album/",
          "url": "https://www.reddit.com/gallery/p2",
          "domain": "reddit.com",
          "is_gallery": true,
          "is_video": false,
          "gallery_data": {"items": [{"media_id": "g1", "id": 1}, {"media_id": "g2", "id": 2}]},
          "media_metadata": {
            "g1": {"status": "valid", "e": "Image", "m": "image/jpg", "s": {"u": "https://preview.redd.it/g1.jpg?width=3000&amp;s=one", "x": 3000, "y": 2000}, "p": [{"u": "https://preview.redd.it/g1.jpg?width=108&amp;s=small", "x": 108, "y": 72}]},
            "g2": {"status": "valid", "e": "Image", "m": "image/png", "p": [{"u": "https://preview.redd.it/g2.png?width=108&amp;s=two", "x": 108, "y": 72}]}
          }
        }
      },
      {
        "kind": "t3",
        "data": {
          "id": "p3",
          "name": "t3_p3",
          "title": "Dog learns to skateboard",
          "author": "dogperson",
          "subreddit": "pics",
          "created_utc": 1714557600.0,
          "score": 4300,
          "num_comments": 210,
          "permalink": "/r/pics/comments/p3/dog_learns_to_skateboard/",
          "url": "https://v.redd.it/skate",
          "domain": "v.redd.it",
          "post_hint": "hosted:video",
          "is_video": true,
          "media": null,
          "secure_media": {
            "reddit_video": {"fallback_url": "https://v.redd.it/skate/DASH_720.mp4?source=fallback", "height": 720, "width": 1280, "duration": 31, "is_gif": false}
          }
        }
      },
      {
        "kind": "t3",
        "data": {
          "id": "p4",
          "name": "t3_p4",
          "title": "Timelapse of the northern lights",
          "author": "skywatcher",
          "subreddit": "pics",
          "created_utc": 1714554000.0,
          "score": 320,
          "num_comments": 9,
          "permalink": "/r/pics/comments/p4/timelapse/",
          "url": "https://youtu.be/dQw4w9WgXcQ",
          "domain": "youtu.be",
          "post_hint": "rich:video",
          "is_video": false,
          "secure_media": {
            "type": "youtube.com",
            "oembed": {"provider_name": "YouTube", "title": "Northern lights", "thumbnail_url": "https://i.ytimg.com/vi/dQw4w9WgXcQ/hqdefault.jpg", "type": "video"}
          }
        }
      },
      {
        "kind": "t3",
        "data": {
          "id": "p5",
          "name": "t3_p5",
          "title": "Which camera should I buy?",
          "author": "newbie",
          "subreddit": "pics",
          "created_utc": 1714550400.0,
          "score": 3,
          "num_comments": 30,
          "permalink": "/r/pics/comments/p5/which_camera/",
          "url": "https://www.reddit.com/r/pics/comments/p5/which_camera/",
          "domain": "self.pics",
          "is_self": true,
          "is_video": false,
          "thumbnail": "self"
        }
      },
      {
        "kind": "t3",
        "data": {
          "id": "p6",
          "name": "t3_p6",
          "title": "Cat jump fail",
          "author": null,
          "subreddit": "pics",
          "created_utc": 1714546800.0,
          "score": 77,
          "num_comments": 4,
          "permalink": "/r/pics/comments/p6/cat_jump_fail/",
          "url": "https://i.imgur.com/CatJump.gifv",
          "domain": "i.imgur.com",
          "post_hint": "link",
          "is_video": false
        }
      }
    ]
  }
}`

// ListingPage2Contract follows ListingContract. It repeats p6, as upstream
// does when posts shift between requests, and ends the listing.
const ListingPage2Contract = `{
  "kind": "Listing",
  "data": {
    "after": null,
    "dist": 2,
    "children": [
      {
        "kind": "t3",
        "data": {
          "id": "p6",
          "name": "t3_p6",
          "title": "Cat jump fail",
          "subreddit": "pics",
          "created_utc": 1714546800.0,
          "permalink": "/r/pics/comments/p6/cat_jump_fail/",
          "url": "https://i.imgur.com/CatJump.gifv"
        }
      },
      {
        "kind": "t3",
        "data": {
          "id": "p7",
          "name": "t3_p7",
          "title": "Mountain lake",
          "author": "hiker",
          "subreddit": "pics",
          "created_utc": 1714543200.0,
          "score": 95,
          "num_comments": 2,
          "permalink": "/r/pics/comments/p7/mountain_lake/",
          "url": "https://imgur.com/MtnLake",
          "domain": "imgur.com"
        }
      }
    ]
  }
}`

// TextOnlyListingContract is a full page of a discussion subreddit without
// any media.
const TextOnlyListingContract = `{
  "kind": "Listing",
  "data": {
    "after": "t3_q2",
    "children": [
      {"kind": "t3", "data": {"id": "q1", "title": "What is your favourite book?", "url": "https://www.reddit.com/r/askreddit/comments/q1/", "is_self": true}},
      {"kind": "t3", "data": {"id": "q2", "title": "News link", "url": "https://example.com/article.html", "post_hint": "link"}}
    ]
  }
}`

// NotFoundContract is the body upstream sends with a 404 for a banned or
// missing subreddit.
const NotFoundContract = `{"message": "Not Found", "error": 404, "reason": "banned"}`

// ForbiddenContract is the body upstream sends with a 403 for a private subreddit.
const ForbiddenContract = `{"message": "Forbidden", "error": 403, "reason": "private"}`

// ListingIDs are the post ids of ListingContract in upstream order.
var ListingIDs = []string{"p1", "p2", "p3", "p4", "p5", "p6"}

// ListingMediaIDs are the ids of ListingContract that classify as media.
var ListingMediaIDs = []string{"p1", "p2", "p3", "p4", "p6"}
