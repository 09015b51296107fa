package ranking

// DefaultMajorPublishers lists established Korean trade publishers whose
// catalog quality earns a small scoring bonus. Membership is checked against
// the normalized publisher name.
func DefaultMajorPublishers() []string {
	return []string{
		"시공사", "위즈덤하우스", "창비", "북이십일", "김영사", "다산북스", "알에이치코리아",
		"쌤앤파커스", "영림카디널", "내 인생의 책", "바람의아이들", "스타북스", "비룡소",
		"국민서관", "웅진씽크빅", "계림북스", "계몽사", "문학수첩", "민음사", "밝은세상",
		"범우사", "문학과지성사", "문학동네", "사회평론", "자음과모음", "중앙M&B",
		"창작과비평사", "한길사", "은유출판", "열린책들", "살림출판사", "학지사", "박영사",
		"안그라픽스", "길벗", "제이펍", "다락원", "평단문화사", "정보문화사", "영진닷컴",
		"성안당", "박문각", "넥서스북", "리스컴", "가톨릭출판사", "대한기독교서회",
		"한국장로교출판사", "아가페출판사", "분도출판사",
	}
}
