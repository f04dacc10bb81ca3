package config

import "time"

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Search: SearchConfig{
			Provider:  "serper",
			Endpoint:  "https://google.serper.dev/search",
			Sites:     []string{"v2ex.com", "reddit.com", "github.com", "huggingface.co"},
			Blacklist: []string{"awesome", "list", "collection", "resource", "directory"},
			Timeout:   20 * time.Second,
		},
		Scrape: ScrapeConfig{
			Provider: "firecrawl",
			Endpoint: "https://api.firecrawl.dev/v1/scrape",
			Interval: 3 * time.Second,
			Timeout:  30 * time.Second,
		},
		LLM: LLMConfig{
			Provider:      "deepseek",
			Endpoint:      "https://api.deepseek.com",
			Model:         "deepseek-chat",
			PositiveToken: "VALID_LEAD",
			Timeout:       60 * time.Second,
		},
		Pipeline: PipelineConfig{
			Workers:       2,
			InitialBudget: 10,
			WidenedBudget: 30,
			WidenInvalid:  8,
			WidenValid:    3,
		},
		Dimensions: []Dimension{
			{ID: "zero-code_tools", Title: "零代码工具与Agent集成"},
			{ID: "workflow_orchestration", Title: "工作流编排与自动化"},
			{ID: "enterprise_cases", Title: "企业落地案例与治理"},
			{ID: "cost_risk_control", Title: "成本优化与风控策略"},
			{ID: "cn_access_payments", Title: "中国用户可达性与支付替代"},
		},
		Categories: []Category{
			{
				ID:    "fish-speech",
				Name:  "Fish-Speech",
				Query: "Fish-Speech 商业化实测 语音克隆 效果演示",
				Seeds: []string{"https://huggingface.co/spaces/fishaudio/fish-speech"},
			},
			{
				ID:    "gpt-sovits",
				Name:  "GPT-SoVITS",
				Query: "GPT-SoVITS 还原度 避坑指南 变现方案",
				Seeds: []string{"https://github.com/RVC-Boss/GPT-SoVITS"},
			},
			{
				ID:    "elevenlabs-alt",
				Name:  "ElevenLabs 替代",
				Query: "ElevenLabs 替代品 开源 实时翻译 效果对比",
				Seeds: []string{"https://huggingface.co/spaces/Plachta/Realtime-TTS"},
			},
		},
		Harvest: HarvestConfig{
			Driver:          "chromedp",
			BaseURL:         "https://www.xiaohongshu.com",
			SearchURL:       "https://www.xiaohongshu.com/search_result?keyword=%s",
			Containers:      ".note-item, section",
			ScrollOffset:    1500,
			Settle:          5 * time.Second,
			MaxIterations:   20,
			Target:          20,
			MinLikes:        5000,
			StrategyTimeout: 5 * time.Second,
			MaxAuthPrompts:  3,
			SeedKeyword:     "调色",
			TermCount:       10,
			TitleSample:     50,
			FallbackTerms: []string{
				"富士NC调色", "莫兰迪色系", "法式复古滤镜", "胶片感调色", "ins风滤镜",
				"冷白皮调色", "奶油肌滤镜", "赛博朋克调色", "电影感调色", "日系小清新",
			},
			Stopwords: []string{
				"调色", "的", "了", "是", "在", "我", "有", "和", "就", "不", "一个",
				"没有", "自己", "我们", "现在", "综合", "全部", "最新", "最热", "大家",
				"喜欢", "分享", "教程", "方法", "技巧", "简单", "快速", "实用", "好看",
				"效果", "非常", "特别", "超级", "绝对", "简直", "真的", "一定", "可以",
				"能够", "就是", "还是", "但是", "不过", "所以", "因为", "如果", "虽然",
				"而且", "并且", "或者", "不是", "而是", "这里", "那里", "这样", "那样",
				"怎么", "什么", "哪里", "为什么", "多少", "时候", "今天", "明天", "昨天",
				"以后", "以前", "开始", "结束", "然后", "最后", "首先", "其次",
			},
			RecordsPerTerm: 10,
		},
		Feasibility: FeasibilityConfig{
			Sites:     []string{"v2ex.com", "reddit.com"},
			LinkLimit: 50,
			PerDoc:    4000,
			MaxDocs:   10,
		},
		Report: ReportConfig{
			OutDir:        "reports",
			Title:         "Lead Hunter Report",
			AuditChunk:    240,
			TopCategories: 5,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
