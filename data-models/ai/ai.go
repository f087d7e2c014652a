package ai

// ParseInput 自然语言解析请求
type ParseInput struct {
	Body struct {
		Input     string `json:"input" minLength:"1" example:"为张三创建订单，苹果10个单价5元" doc:"用户输入的自然语言"`
		Confirmed bool   `json:"confirmed,omitempty" doc:"危险操作的二次确认标记"`
	}
}

// ParseData 解析结果
type ParseData struct {
	InteractionID string `json:"interaction_id" doc:"本次交互的唯一标识，用于日志排查"`
	Reply         string `json:"reply" doc:"给用户的回复文本"`
	NeedConfirm   bool   `json:"need_confirm" doc:"是否需要二次确认"`
}

// ParseResponse 自然语言解析响应
type ParseResponse struct {
	Body ParseData
}

// InsightsInput 经营洞察请求
type InsightsInput struct {
	Body struct {
		Question string `json:"question,omitempty" example:"这个月经营情况怎么样" doc:"分析问题，留空则做整体分析"`
	}
}

// InsightsData 经营洞察结果
type InsightsData struct {
	Analysis string `json:"analysis" doc:"分析内容"`
	Source   string `json:"source" example:"ai" doc:"结果来源（ai 或 fallback）"`
}

// InsightsResponse 经营洞察响应
type InsightsResponse struct {
	Body InsightsData
}

// StatusData AI 服务状态
type StatusData struct {
	Available bool   `json:"available" doc:"AI 服务是否可用"`
	Model     string `json:"model" example:"deepseek-chat" doc:"使用的模型"`
	Message   string `json:"message" doc:"状态说明"`
}

// StatusResponse AI 服务状态响应
type StatusResponse struct {
	Body StatusData
}

// HealthData 健康检查结果
type HealthData struct {
	Status string `json:"status" example:"ok" doc:"健康状态"`
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Body HealthData
}
