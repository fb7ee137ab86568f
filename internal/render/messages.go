package render

// User facing texts. The board is shown to Korean speaking operators.
const (
	MsgCurrentPrice = "현재가"
	MsgCurrentTime  = "현재 시간"
	MsgBaseline     = "기준"
	MsgWon          = "원"
	MsgActive       = "활성"
	MsgInitializing = "시스템 초기화 중입니다..."
	MsgStaleNotice  = "연결 오류: 마지막으로 수신한 데이터를 표시합니다."
	MsgNoData       = "표시할 데이터가 없습니다."
	MsgDailyPnL     = "일일 손익"

	MsgOrderbookFailed = "호가 정보를 가져오는데 실패했습니다."
	MsgPricesFailed    = "가격 정보를 가져오는데 실패했습니다. 나중에 다시 시도해주세요."
	MsgBalancesFailed  = "잔액 정보를 가져오는데 실패했습니다."

	IconError = "exclamation-triangle"
	IconSpin  = "spinner"
)
