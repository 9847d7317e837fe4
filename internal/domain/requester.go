package domain

// Requester identifies who sent a request. An empty UserID means anonymous.
// Requester 请求者身份，UserID 为空表示匿名
type Requester struct {
	UserID string
	IP     string
}

// Anonymous 匿名请求者
var Anonymous = Requester{}

func (r Requester) Authenticated() bool {
	return r.UserID != ""
}
