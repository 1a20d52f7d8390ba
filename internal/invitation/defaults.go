package invitation

const mediaBase = "https://statics.pancake.vn/web-media/"

// Default returns the sample record every new invitation starts from.
func Default() Data {
	return Data{
		GroomName:    "Anh Tú",
		GroomFather:  "Ông Cấn Văn An",
		GroomMother:  "Bà Nguyễn Thị Hải",
		GroomAddress: "Quận 8, TP. Hồ Chí Minh",
		BrideName:    "Diệu Nhi",
		BrideFather:  "Ông Trần Văn A",
		BrideMother:  "Bà Nguyễn Thị B",
		BrideAddress: "Quận 8, TP. Hồ Chí Minh",
		Date:         "2025-02-15",
		Time:         "10:00",
		LunarDate:    "(Tức Ngày 18 Tháng 01 Năm Ất Tỵ)",
		Location:     "The ADORA Center",
		Address:      "431 Hoàng Văn Thụ, Phường 4, Tân Bình, Hồ Chí Minh",
		Message:      "Hân hạnh được đón tiếp quý khách đến chung vui cùng gia đình chúng tôi.",
		BankInfo:     "MBBANK - NGUYEN TAN DAT\n8838683860",
		InvitedTitle: "Trân Trọng Kính Mời",
		AlbumTitle:   "Album Hình Cưới",
		ImageURL:     mediaBase + "ab/56/c3/d2/ae46af903d624877e4e71b00dc5ab4badaa10a8956d3c389ccbc73e9-w:1080-h:1620-l:151635-t:image/jpeg.jpeg",
		MapURL:       "https://maps.google.com",
		MapImageURL:  mediaBase + "f9/98/70/54/59b84c281bf331dc5baccfb671f74826f2cc248fe6459e58d0fd17bc-w:1200-h:1200-l:51245-t:image/png.png",
		QRCodeURL:    mediaBase + "e2/bc/35/38/dc2d9ddf74d997785eb0c802bd3237a50de1118e505f1e0a89ae4ec1-w:592-h:1280-l:497233-t:image/png.png",
		MusicURL:     mediaBase + "5e/ee/bf/4a/afa10d3bdf98ca17ec3191ebbfd3c829d135d06939ee1f1b712d731d-w:0-h:0-l:2938934-t:audio/mpeg.mp3",
		CenterImage:  mediaBase + "e2/8c/c5/37/905dccbcd5bc1c1b602c10c95acb9986765f735e075bff1097e7f457-w:736-h:981-l:47868-t:image/jpeg.jfif",
		FooterImage:  mediaBase + "ad/c0/11/16/06080e040619cef49e87d7e06a574eb61310d3dc4bdc9f0fec3638c9-w:854-h:1280-l:259362-t:image/jpeg.png",
		AlbumImages: []string{
			mediaBase + "e9/80/6a/05/fcf14d0545da0e656237816d3712c50d2792afda074a96abfd9bcec5-w:878-h:1280-l:99344-t:image/jpeg.png",
			mediaBase + "09/00/8a/b4/692735fdc0775ae1530963a767ce4264df77078f659771a3cde9c5ac-w:840-h:1280-l:177736-t:image/jpeg.png",
			mediaBase + "84/b3/f5/cd/cc7957b9f0e497f01a17d05f9e73406b7650b249c169b424c7ee1767-w:854-h:1280-l:94691-t:image/jpeg.png",
			mediaBase + "60/b1/5e/e9/89fd2d2d6cd9a62db6e70776243eb9ed8603fc1fb415bdc95da92104-w:1286-h:857-l:255701-t:image/jpeg.jpg",
			mediaBase + "7a/e8/d6/f6/da197a5a3542dfe09e7faa9e118999103385582808a2e2014fc72986-w:1286-h:988-l:154700-t:image/jpeg.jpg",
		},
		GalleryImages: []string{
			mediaBase + "21/54/83/cb/163b4872b6600196d0ac068b1f046c5dd5f9d20c3ddad5e7c0abea9b-w:736-h:980-l:48194-t:image/jpeg.jfif",
			mediaBase + "3c/3b/ca/e1/e12ca0e6af675d653327f5a3b5d2c7c2385f71d26b8fee7604b45828-w:1706-h:2560-l:224512-t:image/jpeg.jpg",
			mediaBase + "6f/2b/71/1d/03a457a718b5bf78c5639d6de0521b7a19ec698dcd5737408a50bd16-w:1707-h:2560-l:275640-t:image/jpeg.jpg",
		},
		ElementStyles: Styles{},
		Style:         StyleRedGold,
	}
}
