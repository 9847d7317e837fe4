package code

import "net/http"

var (
	Success = NewSuss(200, lang{en: "Success", zh_cn: "成功"})

	// 页面级错误，消息即错误页的说明文字
	ErrorBadRequest         = NewError(400, http.StatusBadRequest, lang{en: "something not right.", zh_cn: "请求有误。"})
	ErrorForbidden          = NewError(403, http.StatusForbidden, lang{en: "oh no.", zh_cn: "没有权限。"})
	ErrorNotFound           = NewError(404, http.StatusNotFound, lang{en: "oops.", zh_cn: "找不到了。"})
	ErrorTooManyRequests    = NewError(429, http.StatusTooManyRequests, lang{en: "Too many requests", zh_cn: "请求过多"})
	ErrorInternal           = NewError(500, http.StatusInternalServerError, lang{en: "wtf.", zh_cn: "服务器内部错误。"})
	ErrorNotImplemented     = NewError(501, http.StatusNotImplemented, lang{en: "This operation is not implemented", zh_cn: "该操作尚未实现"})
	ErrorServiceUnavailable = NewError(503, http.StatusServiceUnavailable, lang{en: "I'm busy right now, try again later.", zh_cn: "服务繁忙，请稍后再试。"})

	ErrorInvalidParams = NewError(1001, http.StatusBadRequest, lang{en: "Invalid params", zh_cn: "参数错误"})
	ErrorInvalidToken  = NewError(1002, http.StatusUnauthorized, lang{en: "Invalid authorization token", zh_cn: "无效的授权令牌"})
	ErrorNotSignedIn   = NewError(1003, http.StatusForbidden, lang{en: "Sign in required", zh_cn: "需要登录"})
	ErrorTokenGenerate = NewError(1004, http.StatusInternalServerError, lang{en: "Failed to generate token", zh_cn: "生成令牌失败"})

	ErrorNoteNotFound       = NewError(2001, http.StatusNotFound, lang{en: "oops.", zh_cn: "笔记不存在。"})
	ErrorNoteForbidden      = NewError(2002, http.StatusForbidden, lang{en: "oh no.", zh_cn: "无权查看该笔记。"})
	ErrorNoteCreateFailed   = NewError(2003, http.StatusInternalServerError, lang{en: "wtf.", zh_cn: "创建笔记失败。"})
	ErrorNoteUpdateFailed   = NewError(2004, http.StatusInternalServerError, lang{en: "wtf.", zh_cn: "更新笔记失败。"})
	ErrorAnonymousForbidden = NewError(2005, http.StatusForbidden, lang{en: "oh no.", zh_cn: "不允许匿名创建笔记。"})
	ErrorRevisionNotFound   = NewError(2006, http.StatusNotFound, lang{en: "oops.", zh_cn: "版本不存在。"})
	ErrorRevisionFailed     = NewError(2007, http.StatusInternalServerError, lang{en: "wtf.", zh_cn: "读取版本失败。"})

	ErrorPDFExportDisabled = NewError(3001, http.StatusForbidden, lang{en: "PDF export is disabled. Set \"allowpdfexport: true\" to enable.", zh_cn: "PDF 导出已禁用，设置 \"allowpdfexport: true\" 以启用。"})
	ErrorPDFRenderFailed   = NewError(3002, http.StatusInternalServerError, lang{en: "wtf.", zh_cn: "PDF 渲染失败。"})
	ErrorPDFRenderBusy     = NewError(3003, http.StatusServiceUnavailable, lang{en: "I'm busy right now, try again later.", zh_cn: "PDF 渲染繁忙，请稍后再试。"})

	ErrorOAuthParamsMissing = NewError(4001, http.StatusForbidden, lang{en: "oh no.", zh_cn: "缺少授权参数。"})
	ErrorOAuthStateInvalid  = NewError(4002, http.StatusForbidden, lang{en: "oh no.", zh_cn: "授权状态无效。"})
	ErrorOAuthExchange      = NewError(4003, http.StatusForbidden, lang{en: "oh no.", zh_cn: "授权令牌交换失败。"})
	ErrorGistCreateFailed   = NewError(4004, http.StatusForbidden, lang{en: "oh no.", zh_cn: "创建 Gist 失败。"})
	ErrorUserNotFound       = NewError(4005, http.StatusNotFound, lang{en: "oops.", zh_cn: "用户不存在。"})
	ErrorUserAlreadyExists  = NewError(4006, http.StatusBadRequest, lang{en: "User already exists", zh_cn: "用户已存在"})

	ErrorFileNotFound    = NewError(5001, http.StatusNotFound, lang{en: "oops.", zh_cn: "文件不存在。"})
	ErrorFilePathInvalid = NewError(5002, http.StatusBadRequest, lang{en: "something not right.", zh_cn: "文件路径无效。"})
	ErrorFileWriteFailed = NewError(5003, http.StatusInternalServerError, lang{en: "wtf.", zh_cn: "写入文件失败。"})
)

// Title is the short status title used by error pages.
// Title 错误页使用的状态标题
func (e *Code) Title() string {
	switch e.StatusCode() {
	case http.StatusBadRequest:
		return "Bad Request"
	case http.StatusUnauthorized:
		return "Unauthorized"
	case http.StatusForbidden:
		return "Forbidden"
	case http.StatusNotFound:
		return "Not Found"
	case http.StatusTooManyRequests:
		return "Too Many Requests"
	case http.StatusNotImplemented:
		return "Not Implemented"
	case http.StatusServiceUnavailable:
		return "Service Unavailable"
	case http.StatusInternalServerError:
		return "Internal Error"
	}
	return http.StatusText(e.StatusCode())
}
