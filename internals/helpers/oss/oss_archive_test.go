package helper

import "testing"

func TestNormalizeEndpoint(t *testing.T) {
	cases := map[string]string{
		"":                                     "",
		"oss-ap-southeast-5.aliyuncs.com":      "https://oss-ap-southeast-5.aliyuncs.com",
		" http://localhost:9000 ":              "http://localhost:9000",
		"https://oss-cn-hangzhou.aliyuncs.com": "https://oss-cn-hangzhou.aliyuncs.com",
	}
	for in, want := range cases {
		if got := normalizeEndpoint(in); got != want {
			t.Errorf("normalizeEndpoint(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPublicURL(t *testing.T) {
	a := &OSSArchive{Endpoint: "https://oss-ap-southeast-5.aliyuncs.com", BucketName: "books"}
	want := "https://books.oss-ap-southeast-5.aliyuncs.com/payment-books/p1.pdf"
	if got := a.PublicURL("payment-books/p1.pdf"); got != want {
		t.Errorf("PublicURL = %q, want %q", got, want)
	}
}
