package app

import (
	"fmt"

	"blogdeck/internal/types"
)

// contentPresenter renders the content pane for the selected action.
type contentPresenter interface {
	Render() string
}

// blogContextAccepter is implemented only by presenters that need the owning
// blog's context. Callers check the capability explicitly instead of passing
// a blog to every presenter.
type blogContextAccepter interface {
	AcceptBlogContext(blog *types.Blog)
}

func presenterFor(action RowAction) contentPresenter {
	switch action {
	case ActionViewSite:
		return &sitePresenter{}
	case ActionComments:
		return &commentsPresenter{}
	default:
		return &actionPresenter{action: action}
	}
}

// actionPresenter is the generic echo pane for actions with no dedicated
// presentation.
type actionPresenter struct {
	action RowAction
	blog   *types.Blog
}

func (p *actionPresenter) AcceptBlogContext(blog *types.Blog) { p.blog = blog }

func (p *actionPresenter) Render() string {
	title := p.action.Label()
	if p.blog != nil {
		title = p.blog.Name + " › " + title
	}
	return contentTitleStyle.Render(title) + "\n\n" +
		contentBodyStyle.Render("Press enter on a sidebar row to switch views.")
}

// sitePresenter shows the site address and the copy hint.
type sitePresenter struct {
	blog *types.Blog
}

func (p *sitePresenter) AcceptBlogContext(blog *types.Blog) { p.blog = blog }

func (p *sitePresenter) Render() string {
	if p.blog == nil {
		return contentTitleStyle.Render("View Site")
	}
	return contentTitleStyle.Render(p.blog.Name+" › View Site") + "\n\n" +
		contentBodyStyle.Render(p.blog.URL) + "\n" +
		contentBodyStyle.Render("press c to copy the site address")
}

type commentsPresenter struct {
	blog    *types.Blog
	pending int
}

func (p *commentsPresenter) AcceptBlogContext(blog *types.Blog) { p.blog = blog }

func (p *commentsPresenter) SetPending(count int) { p.pending = count }

func (p *commentsPresenter) Render() string {
	title := "Comments"
	if p.blog != nil {
		title = p.blog.Name + " › Comments"
	}
	body := "No comments awaiting moderation."
	if p.pending > 0 {
		body = fmt.Sprintf("%d comments awaiting moderation.", p.pending)
	}
	return contentTitleStyle.Render(title) + "\n\n" + contentBodyStyle.Render(body)
}
