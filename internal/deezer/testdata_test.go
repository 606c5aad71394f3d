package deezer

// threeTracks is a trimmed real-world response with three records. The third
// record has no album and a string-typed rank.
const threeTracks = `{
  "data": [
    {
      "id": 3135556,
      "readable": true,
      "title": "Harder, Better, Faster, Stronger",
      "title_short": "Harder, Better, Faster, Stronger",
      "title_version": "",
      "link": "https://www.deezer.com/track/3135556",
      "duration": 224,
      "rank": 956167,
      "explicit_lyrics": false,
      "preview": "https://cdns-preview-d.dzcdn.net/stream/c-deda7fa9316d9e9e880d2c6207e92260-8.mp3",
      "artist": {
        "id": 27,
        "name": "Daft Punk",
        "link": "https://www.deezer.com/artist/27",
        "picture": "https://api.deezer.com/artist/27/image",
        "picture_small": "https://e-cdns-images.dzcdn.net/images/artist/small.jpg",
        "picture_medium": "https://e-cdns-images.dzcdn.net/images/artist/medium.jpg",
        "picture_big": "https://e-cdns-images.dzcdn.net/images/artist/big.jpg",
        "picture_xl": "https://e-cdns-images.dzcdn.net/images/artist/xl.jpg",
        "type": "artist"
      },
      "album": {
        "id": 302127,
        "title": "Discovery",
        "cover": "https://api.deezer.com/album/302127/image",
        "cover_small": "https://e-cdns-images.dzcdn.net/images/cover/small.jpg",
        "cover_medium": "https://e-cdns-images.dzcdn.net/images/cover/medium.jpg",
        "cover_big": "https://e-cdns-images.dzcdn.net/images/cover/big.jpg",
        "cover_xl": "https://e-cdns-images.dzcdn.net/images/cover/xl.jpg",
        "type": "album"
      },
      "type": "track"
    },
    {
      "id": 3135553,
      "title": "One More Time",
      "duration": 320,
      "artist": {"id": 27, "name": "Daft Punk"},
      "album": {"id": 302127, "title": "Discovery"}
    },
    {
      "id": 3129407,
      "title": "Around the World",
      "duration": 429,
      "rank": "high",
      "artist": {"id": 27, "name": "Daft Punk"}
    }
  ],
  "total": 3,
  "next": ""
}`
