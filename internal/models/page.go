package models

// Page описывает пагинацию from/size: from — смещение с нуля,
// которое переводится в номер страницы целочисленным делением from/size.
type Page struct {
	From int
	Size int
}

func (p *Page) Limit() int {
	if p == nil {
		return 0
	}
	return p.Size
}

func (p *Page) Offset() int {
	if p == nil {
		return 0
	}
	return (p.From / p.Size) * p.Size
}
