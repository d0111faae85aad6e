package memory

import (
	"time"

	"posts-service/internal/model"
)

func fixture(id, authorID, title, content, image, excerpt string, month time.Month) model.Post {
	created := time.Date(2023, month, 1, 0, 0, 0, 0, time.UTC)
	return model.Post{
		ID: id,
		PostContent: model.PostContent{
			Title:    title,
			Content:  content,
			ImageURL: image,
			Excerpt:  excerpt,
		},
		AuthorID:  authorID,
		CreatedAt: created,
		UpdatedAt: created.AddDate(0, 0, 1),
	}
}

// Fixtures возвращает демонстрационные посты для заполнения in-memory хранилища
func Fixtures() []model.Post {
	return []model.Post{
		fixture("550e8400-e29b-41d4-a716-446655440000", "550e8400-e29b-41d4-a716-446655440001",
			"Exploring the Future of AI",
			"Artificial Intelligence is transforming industries across the globe, from healthcare to transportation. Learn about the latest developments.",
			"https://images.unsplash.com/photo-1506748686214-e9df14d4d9d0",
			"AI is transforming industries...", time.January),
		fixture("550e8400-e29b-41d4-a716-446655440002", "550e8400-e29b-41d4-a716-446655440003",
			"The Rise of Electric Vehicles",
			"Electric vehicles are becoming more popular as technology advances and infrastructure improves. Discover the latest trends.",
			"https://images.unsplash.com/photo-1511391409280-894f3f3f8a5c",
			"Electric vehicles are on the rise...", time.February),
		fixture("550e8400-e29b-41d4-a716-446655440004", "550e8400-e29b-41d4-a716-446655440005",
			"Sustainable Living: Tips and Tricks",
			"Sustainable living is essential for our planet. Learn practical ways to reduce your carbon footprint and live more sustainably.",
			"https://images.unsplash.com/photo-1521747116042-5a810fda9664",
			"Sustainable living is essential...", time.March),
		fixture("550e8400-e29b-41d4-a716-446655440007", "550e8400-e29b-41d4-a716-446655440008",
			"The Future of Web Development",
			"Explore the latest trends in web development, from serverless architectures to edge computing and everything in between.",
			"https://images.unsplash.com/photo-1498050108023-c5249f4df085",
			"Web development is evolving...", time.April),
		fixture("550e8400-e29b-41d4-a716-446655440009", "550e8400-e29b-41d4-a716-446655440010",
			"Cybersecurity Best Practices",
			"Stay safe online with these essential cybersecurity tips and best practices for individuals and organizations.",
			"https://images.unsplash.com/photo-1550751827-4bd374c3f58b",
			"Protect yourself online...", time.May),
		fixture("550e8400-e29b-41d4-a716-446655440011", "550e8400-e29b-41d4-a716-446655440012",
			"Machine Learning Applications",
			"Discover real-world applications of machine learning and how it's revolutionizing different industries.",
			"https://images.unsplash.com/photo-1515879218367-8466d910aaa4",
			"ML in the real world...", time.June),
		fixture("550e8400-e29b-41d4-a716-446655440013", "550e8400-e29b-41d4-a716-446655440014",
			"The Rise of Remote Work",
			"How remote work is changing the workplace landscape and tips for successful remote collaboration.",
			"https://images.unsplash.com/photo-1513530534585-c7b1394c6d51",
			"Remote work revolution...", time.July),
		fixture("550e8400-e29b-41d4-a716-446655440015", "550e8400-e29b-41d4-a716-446655440016",
			"Blockchain Technology Explained",
			"Understanding blockchain technology and its potential impact on various industries beyond cryptocurrency.",
			"https://images.unsplash.com/photo-1639762681485-074b7f938ba0",
			"Blockchain beyond crypto...", time.August),
		fixture("550e8400-e29b-41d4-a716-446655440017", "550e8400-e29b-41d4-a716-446655440018",
			"Green Energy Solutions",
			"Exploring renewable energy solutions and their role in creating a sustainable future for our planet.",
			"https://images.unsplash.com/photo-1473341304170-971dccb5ac1e",
			"Renewable energy future...", time.September),
	}
}
